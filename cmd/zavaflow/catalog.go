package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"zavaflow/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the agents, knowledge bases and preset questions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			printCatalog(cmd.OutOrStdout(), catalog.Default())
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintln(w, titleStyle.Render("Agents"))
	for _, agent := range cat.Agents() {
		fmt.Fprintf(w, "  %s %s  %s\n", labelStyle.Render(agent.ID), agent.Name, dimStyle.Render(agent.Model))
		if agent.RoutingOnly() {
			fmt.Fprintln(w, "    knowledge sources: none (routing only)")
			continue
		}
		fmt.Fprintf(w, "    connected kb: %s\n", agent.ConnectedKB)
		fmt.Fprintf(w, "    knowledge sources: %s\n", strings.Join(agent.KnowledgeSources, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Knowledge Bases"))
	for _, kb := range cat.KnowledgeBases() {
		fmt.Fprintf(w, "  %s %s %s  %s\n", cat.Logo(kb.ID), labelStyle.Render(kb.ID), kb.Name, dimStyle.Render(kb.RetrievalMode))
		fmt.Fprintf(w, "    knowledge sources: %s\n", strings.Join(kb.KnowledgeSources, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Quick Actions"))
	for i, q := range cat.Questions() {
		fmt.Fprintf(w, "  F%d %s %s\n", i+1, q.Text, dimStyle.Render("("+q.Agent+")"))
	}
}
