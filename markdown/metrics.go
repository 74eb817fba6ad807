package markdown

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var postsRendered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tweetmd_posts_rendered_total",
	Help: "Number of posts rendered to Markdown, by render mode",
}, []string{"mode"})
