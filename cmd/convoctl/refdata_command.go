package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mk-yl/convocation-portal/internal/models"
)

func newRefdataCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refdata",
		Short: "Print every reference collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			snap, err := svc.references.Snapshot(cmd.Context())
			if snap == nil {
				return err
			}
			if ctx.flags.json {
				if jsonErr := writeJSON(cmd, snap); jsonErr != nil {
					return jsonErr
				}
				return err
			}
			printSnapshot(cmd, snap)
			return err
		},
	}
}

func printSnapshot(cmd *cobra.Command, snap *models.ReferenceSnapshot) {
	for _, kind := range models.ReferenceKinds {
		collection, err := snap.Collection(kind)
		if err != nil {
			continue
		}
		printSection(cmd.OutOrStdout(), string(kind))
		printCollection(cmd, collection)
	}
}

func printCollection(cmd *cobra.Command, collection interface{}) {
	out := cmd.OutOrStdout()
	switch items := collection.(type) {
	case *[]models.Location:
		fmt.Fprintln(out, entityTable(*items))
	case *[]models.Venue:
		fmt.Fprintln(out, entityTable(*items))
	case *[]models.Certification:
		fmt.Fprintln(out, entityTable(*items))
	case *[]models.ExamType:
		fmt.Fprintln(out, entityTable(*items))
	case *[]models.Duration:
		fmt.Fprintln(out, entityTable(*items))
	case *[]models.Class:
		rows := make([][]string, 0, len(*items))
		for _, c := range *items {
			rows = append(rows, []string{strconv.Itoa(c.ID), c.Name, labels(c.Certifications), labels(c.ExamTypes)})
		}
		fmt.Fprintln(out, renderTable([]string{"ID", "Nom", "Certifications", "Types d'examen"}, rows, []columnAlignment{alignRight}))
	}
}

func entityTable[T models.ReferenceEntity](items []T) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{strconv.Itoa(item.EntityID()), item.Label()})
	}
	return renderTable([]string{"ID", "Nom"}, rows, []columnAlignment{alignRight})
}

func labels[T models.ReferenceEntity](items []T) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Label())
	}
	return strings.Join(names, ", ")
}
