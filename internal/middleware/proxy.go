package middleware

import (
	"fmt"
	"net"

	"github.com/labstack/echo/v4"
)

// TrustedProxies makes c.RealIP() honour X-Forwarded-For, but only for hops
// inside trustedCIDRs. With no CIDRs the peer address is used as-is, so a
// client cannot spoof its IP past the rate limiter.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) error {
	if len(trustedCIDRs) == 0 {
		e.IPExtractor = echo.ExtractIPDirect()
		return nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return fmt.Errorf("parsing trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(network))
	}
	e.IPExtractor = echo.ExtractIPFromXFFHeader(opts...)
	return nil
}
