package download

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var assetsDownloaded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tweetmd_assets_downloaded_total",
	Help: "Number of assets downloaded",
})

var assetsFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tweetmd_assets_failed_total",
	Help: "Number of asset downloads that failed",
})

var assetBytes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tweetmd_asset_bytes_total",
	Help: "Bytes of assets written to the vault",
})
