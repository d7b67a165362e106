package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cc = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_channel_count",
		Help: "The number of aggregated channel records.",
	})
	mfc = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggregator_missing_facet_count",
		Help: "The number of channels without the given facet (per facet).",
	}, []string{"facet"})
	fec = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aggregator_facet_error_count",
		Help: "The number of facet queries that failed (per facet).",
	}, []string{"facet"})
	icnc = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aggregator_invalid_channel_number_count",
		Help: "The number of channels without a valid channel number.",
	})
)

func channelCounter() prometheus.Counter {
	return cc
}

func missingFacetCounter(facet string) prometheus.Counter {
	return mfc.With(prometheus.Labels{"facet": facet})
}

func facetErrorCounter(facet string) prometheus.Counter {
	return fec.With(prometheus.Labels{"facet": facet})
}

func invalidChannelNumberCounter() prometheus.Counter {
	return icnc
}
