package algorithms

import (
	"github.com/dd0wney/cluso-pregel/pkg/graph"
)

// communitiesFromLabels groups nodes by label. Community ids are assigned
// in order of the lowest internal node id carrying the label.
func communitiesFromLabels(g graph.Graph, labels []int64) *CommunityDetectionResult {
	ids := originalIDs(g)
	byLabel := make(map[int64]int)
	internal := make([]int, len(labels))
	communities := make([]*Community, 0)
	nodeCommunity := make(map[uint64]int, len(labels))

	for node, label := range labels {
		id, ok := byLabel[label]
		if !ok {
			id = len(communities)
			byLabel[label] = id
			communities = append(communities, &Community{ID: id})
		}
		internal[node] = id
		c := communities[id]
		c.Nodes = append(c.Nodes, ids[node])
		nodeCommunity[ids[node]] = id
	}

	inside := make([]int64, len(communities))
	for node := range labels {
		g.ForEachRelationship(int64(node), func(_, target int64) bool {
			if internal[target] == internal[node] {
				inside[internal[node]]++
			}
			return true
		})
	}
	for i, c := range communities {
		c.Size = len(c.Nodes)
		if c.Size > 1 {
			c.Density = float64(inside[i]) / float64(c.Size*(c.Size-1))
		}
	}

	return &CommunityDetectionResult{
		Communities:   communities,
		NodeCommunity: nodeCommunity,
		Modularity:    modularity(g, internal, len(communities)),
	}
}

// modularity computes Q = sum over communities of in_c/2m - (deg_c/2m)^2,
// where the stored relationship count is 2m for undirected graphs.
func modularity(g graph.Graph, community []int, count int) float64 {
	total := float64(g.RelationshipCount())
	if total == 0 {
		return 0
	}

	inside := make([]float64, count)
	degree := make([]float64, count)
	for node, c := range community {
		degree[c] += float64(g.Degree(int64(node)))
		g.ForEachRelationship(int64(node), func(_, target int64) bool {
			if community[target] == c {
				inside[c]++
			}
			return true
		})
	}

	var q float64
	for c := 0; c < count; c++ {
		share := degree[c] / total
		q += inside[c]/total - share*share
	}
	return q
}
