package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/m3rciful/orderbot/core/buildinfo"
)

func init() {
	register(buildInfo)
	bi := buildinfo.Get()
	buildInfo.WithLabelValues(bi.Version, bi.Commit, bi.GoVersion).Set(1)
}

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "orderbot_build_info",
		Help: "Build metadata; value is always 1.",
	},
	[]string{"version", "commit", "go_version"},
)
