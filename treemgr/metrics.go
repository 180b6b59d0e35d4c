package treemgr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const treeLabel = "tree"

var (
	residentNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lod_resident_nodes",
		Help: "The number of nodes resident in the tile tree.",
	}, []string{treeLabel})

	pendingTiles = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lod_pending_tiles",
		Help: "The number of tiles requested but not yet loaded.",
	}, []string{treeLabel})

	unmergedNodes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lod_unmerged_nodes",
		Help: "The number of loaded nodes waiting for their parent.",
	}, []string{treeLabel})

	mergedNodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lod_merged_nodes_total",
		Help: "The total number of nodes merged into the tree.",
	}, []string{treeLabel})

	prunedNodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lod_pruned_nodes_total",
		Help: "The total number of nodes evicted by age.",
	}, []string{treeLabel})

	discardedNodesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lod_discarded_nodes_total",
		Help: "The total number of orphaned nodes discarded after the grace period.",
	}, []string{treeLabel})
)
