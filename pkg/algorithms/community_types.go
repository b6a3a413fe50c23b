package algorithms

import (
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

// Community represents a detected community
type Community struct {
	ID      int
	Nodes   []uint64
	Size    int
	Density float64 // Relationship density within community
}

// CommunityDetectionResult contains detected communities
type CommunityDetectionResult struct {
	Communities   []*Community
	Modularity    float64        // Quality measure of the partitioning
	NodeCommunity map[uint64]int // Original node ID -> Community ID
	Iterations    int
	Converged     bool
	Run           *pregel.Result
}

// CommunityOptions configures community detection
type CommunityOptions struct {
	pregel.Config `yaml:",inline"`
}

// DefaultCommunityOptions returns default community detection configuration
func DefaultCommunityOptions() CommunityOptions {
	cfg := pregel.DefaultConfig()
	cfg.MaxIterations = 100
	return CommunityOptions{Config: cfg}
}
