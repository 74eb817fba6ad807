package timeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var timelinePosts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tweetmd_timeline_posts_total",
	Help: "Number of posts prepended to timeline notes",
})
