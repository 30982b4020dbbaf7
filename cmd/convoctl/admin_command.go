package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mk-yl/convocation-portal/internal/models"
	appErrors "github.com/Mk-yl/convocation-portal/pkg/errors"
)

func newAdminCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Maintain the reference collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newAdminListCommand(ctx),
		newAdminWriteCommand(ctx, "create"),
		newAdminWriteCommand(ctx, "update"),
		newAdminDeleteCommand(ctx),
		newAdminClassCommand(ctx),
	)
	return cmd
}

func kindArg(raw string) (models.ReferenceKind, error) {
	kind, ok := models.ParseReferenceKind(strings.TrimSpace(raw))
	if !ok {
		names := make([]string, 0, len(models.ReferenceKinds))
		for _, k := range models.ReferenceKinds {
			names = append(names, string(k))
		}
		return "", appErrors.Clone(appErrors.ErrUnsupportedKind, fmt.Sprintf("unknown kind %q (want one of %s)", raw, strings.Join(names, ", ")))
	}
	return kind, nil
}

func idArg(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func newAdminListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list KIND",
		Short: "List a reference collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			items, err := svc.references.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if ctx.flags.json {
				return writeJSON(cmd, items)
			}
			printCollection(cmd, items)
			return nil
		},
	}
}

func newAdminWriteCommand(ctx *commandContext, action string) *cobra.Command {
	var payload string

	use := "create KIND"
	short := "Create a reference entity from a JSON payload"
	argsCheck := cobra.ExactArgs(1)
	if action == "update" {
		use = "update KIND ID"
		short = "Replace a reference entity with a JSON payload"
		argsCheck = cobra.ExactArgs(2)
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  argsCheck,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			var saved interface{}
			if action == "update" {
				id, err := idArg(args[1])
				if err != nil {
					return err
				}
				saved, err = svc.references.Update(cmd.Context(), kind, id, []byte(payload))
				if err != nil {
					return err
				}
			} else {
				saved, err = svc.references.Create(cmd.Context(), kind, []byte(payload))
				if err != nil {
					return err
				}
			}
			return writeJSON(cmd, saved)
		},
	}
	cmd.Flags().StringVar(&payload, "data", "", `JSON payload, e.g. '{"nom":"Lyon"}'`)
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func newAdminDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KIND ID",
		Short: "Delete a reference entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			id, err := idArg(args[1])
			if err != nil {
				return err
			}
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			if err := svc.references.Delete(cmd.Context(), kind, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", kind, id)
			return nil
		},
	}
}

func newAdminClassCommand(ctx *commandContext) *cobra.Command {
	var id int
	var draft models.ClassDraft

	cmd := &cobra.Command{
		Use:   "class",
		Short: "Create or update a class from certification and exam type ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.services()
			if err != nil {
				return err
			}
			saved, err := svc.references.SaveClass(cmd.Context(), id, draft)
			if err != nil {
				return err
			}
			return writeJSON(cmd, saved)
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Existing class id; omit to create")
	cmd.Flags().StringVar(&draft.Name, "name", "", "Class name")
	cmd.Flags().IntSliceVar(&draft.CertificationIDs, "certification", nil, "Certification id (repeatable)")
	cmd.Flags().IntSliceVar(&draft.ExamTypeIDs, "type-examen", nil, "Exam type id (repeatable)")
	return cmd
}
