package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-pregel/pkg/graphio"
	"github.com/dd0wney/cluso-pregel/pkg/job"
	"github.com/dd0wney/cluso-pregel/pkg/pregel"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Width(14)

	convergedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)
)

// maxListed bounds the per-algorithm lists in the summary
const maxListed = 5

type field struct {
	label string
	value string
}

func renderFields(fields []field) string {
	lines := make([]string, len(fields))
	for i, f := range fields {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(f.label), f.value)
	}
	return strings.Join(lines, "\n")
}

func renderStatus(status pregel.Status) string {
	if status == pregel.Converged {
		return convergedStyle.Render(status.String())
	}
	return warnStyle.Render(status.String())
}

func renderSummary(j *job.Job, stats graphio.Stats, outcome *job.Outcome, exported int64) string {
	run := outcome.Run
	fields := []field{
		{"run", run.RunID},
		{"algorithm", string(j.Algorithm)},
		{"graph", fmt.Sprintf("%d nodes, %d relationships", stats.Nodes, stats.Relationships)},
		{"status", renderStatus(run.Status)},
		{"supersteps", fmt.Sprintf("%d", run.RanIterations)},
		{"messaging", run.Messaging.String()},
		{"partitions", fmt.Sprintf("%d", len(run.Partitions))},
		{"memory", run.Estimate.String()},
		{"duration", run.Duration.Round(time.Millisecond).String()},
	}
	fields = append(fields, algorithmFields(outcome)...)
	if j.Output.Target != "" {
		fields = append(fields, field{"exported", fmt.Sprintf("%d rows to %s", exported, job.Describe(j.Output))})
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Pregel run summary"),
		boxStyle.Render(renderFields(fields)),
	)
}

func algorithmFields(outcome *job.Outcome) []field {
	switch {
	case outcome.PageRank != nil:
		var top []string
		for _, n := range outcome.PageRank.TopNodes {
			if len(top) == maxListed {
				break
			}
			top = append(top, fmt.Sprintf("%d (%.4f)", n.NodeID, n.Score))
		}
		return []field{{"top nodes", strings.Join(top, ", ")}}

	case outcome.Community != nil:
		sizes := make([]int, len(outcome.Community.Communities))
		for i, c := range outcome.Community.Communities {
			sizes[i] = c.Size
		}
		slices.Sort(sizes)
		slices.Reverse(sizes)
		largest := make([]string, 0, maxListed)
		for _, size := range sizes[:min(len(sizes), maxListed)] {
			largest = append(largest, strconv.Itoa(size))
		}
		return []field{
			{"communities", fmt.Sprintf("%d", len(outcome.Community.Communities))},
			{"largest", strings.Join(largest, ", ")},
			{"modularity", fmt.Sprintf("%.4f", outcome.Community.Modularity)},
		}

	case outcome.ShortestPath != nil:
		sp := outcome.ShortestPath
		farthest := 0.0
		for _, d := range sp.Distances {
			farthest = max(farthest, d)
		}
		return []field{
			{"source", fmt.Sprintf("%d", sp.Source)},
			{"reachable", fmt.Sprintf("%d", len(sp.Distances))},
			{"farthest", fmt.Sprintf("%g", farthest)},
		}
	}
	return nil
}
