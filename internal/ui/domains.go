package ui

import (
	"fmt"
	"strconv"
	"strings"

	"betedge/engine/internal/rating"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	domainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
)

// RenderDomains renders every domain as a tree of its stages, boosts and sources
func RenderDomains(domains []*rating.Domain) string {
	if len(domains) == 0 {
		return keyStyle.Render("No domains registered")
	}

	var b strings.Builder
	for i, d := range domains {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(domainTree(d).String())
	}
	return b.String()
}

func domainTree(d *rating.Domain) *tree.Tree {
	label := fmt.Sprintf("%s %s", domainStyle.Render(d.Title), keyStyle.Render("("+d.Key+")"))
	root := tree.Root(label)

	for _, stage := range d.Stages {
		node := tree.Root(fmt.Sprintf("%s %s", keyStyle.Render("stage"), valueStyle.Render(stage.Name)))
		for _, term := range stage.Terms {
			node.Child(termLabel(term))
		}
		root.Child(node)
	}

	root.Child(kv("divisor", strconv.FormatFloat(d.Divisor, 'f', -1, 64)))

	if len(d.Boosts) > 0 {
		boosts := tree.Root(keyStyle.Render("boosts"))
		for _, boost := range d.Boosts {
			boosts.Child(boostLabel(boost))
		}
		root.Child(boosts)
	}

	root.Child(kv("floor", strconv.FormatBool(d.Floor)))

	if d.Live {
		root.Child(kv("sources", strings.Join(d.Sources, ", ")))
	} else {
		root.Child(kv("sources", "simulation only"))
	}
	return root
}

func termLabel(t rating.Term) string {
	metric := t.Metric
	if t.Transform == rating.Inverted {
		metric = fmt.Sprintf("(%s - %s)", strconv.FormatFloat(t.Pivot, 'f', -1, 64), t.Metric)
	}
	return fmt.Sprintf("%s × %s", metric, valueStyle.Render(strconv.FormatFloat(t.Weight, 'f', -1, 64)))
}

func boostLabel(b rating.Boost) string {
	return fmt.Sprintf("%s %s %s → %s", b.Metric, b.When,
		strconv.FormatFloat(b.Threshold, 'f', -1, 64),
		valueStyle.Render("+"+strconv.FormatFloat(b.Amount, 'f', -1, 64)))
}

func kv(k, v string) string {
	return keyStyle.Render(k+":") + " " + valueStyle.Render(v)
}
