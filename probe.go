package transitsync

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/hamishapps/transitsync-routing/config"
)

// ProbeConnectivity reports whether any configured host answers an HTTP
// request within the probe timeout. Any HTTP status counts as reachable; the
// probe only cares about the network path, not the response.
func ProbeConnectivity(ctx context.Context, cfg config.ProbeConfig) bool {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond}
	for _, host := range cfg.Hosts {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, host, nil)
		if err != nil {
			continue
		}
		resp, err := client.Do(req)
		if err != nil {
			Debugf("probe %s failed: %v", host, err)
			continue
		}
		_ = resp.Body.Close()
		Debugf("probe %s reachable (HTTP %d)", host, resp.StatusCode)
		return true
	}
	log.Printf("connectivity probe failed for all hosts")
	return false
}
