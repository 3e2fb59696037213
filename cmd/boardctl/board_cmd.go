package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gartstein/staffboard/internal/board/handlers"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/gartstein/staffboard/internal/pkg/utils"
	"github.com/spf13/cobra"
)

const monthLayout = "2006-01"

type createOptions struct {
	Name        string
	Role        string
	Email       string
	Phone       string
	Photo       string
	Experiences []string
}

func newEmployeesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employees",
		Short: "Register and inspect employees",
	}
	cmd.AddCommand(newCreateCmd(root))

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List employees in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.ListEmployees(ctx, &handlers.ListEmployeesRequest{})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <employee-id>",
		Short: "Show one employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.GetEmployee(ctx, &handlers.GetEmployeeRequest{ID: args[0]})
			})
		},
	})
	return cmd
}

func newCreateCmd(root *rootOptions) *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create --name <name> --role <role> --email <email>",
		Short: "Register an employee into the unassigned pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := models.NewEmployee{
				Name:  opts.Name,
				Role:  models.Role(opts.Role),
				Email: opts.Email,
				Phone: opts.Phone,
				Photo: opts.Photo,
			}
			for _, raw := range opts.Experiences {
				exp, err := parseExperience(raw)
				if err != nil {
					return err
				}
				in.Experiences = append(in.Experiences, exp)
			}

			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.CreateEmployee(ctx, &handlers.CreateEmployeeRequest{Employee: &in})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Role, "role", "", "one of manager, receptionist, technician, security, cleaner, developer, designer")
	cmd.Flags().StringVar(&opts.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&opts.Photo, "photo", "", "photo URL")
	cmd.Flags().StringArrayVar(&opts.Experiences, "experience", nil, `work experience as "description|YYYY-MM|YYYY-MM", end may be "ongoing" (repeatable)`)
	return cmd
}

// parseExperience reads "description|start|end" where end is a month,
// "ongoing" or empty.
func parseExperience(raw string) (models.WorkExperience, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return models.WorkExperience{}, fmt.Errorf("experience %q: want description|start[|end]", raw)
	}

	exp := models.WorkExperience{Description: strings.TrimSpace(parts[0])}
	start, err := time.Parse(monthLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return models.WorkExperience{}, fmt.Errorf("experience %q: start: %w", raw, err)
	}
	exp.Start = start

	end := ""
	if len(parts) == 3 {
		end = strings.TrimSpace(parts[2])
	}
	switch end {
	case "":
	case "ongoing":
		exp.Ongoing = true
	default:
		t, err := time.Parse(monthLayout, end)
		if err != nil {
			return models.WorkExperience{}, fmt.Errorf("experience %q: end: %w", raw, err)
		}
		exp.End = utils.Ptr(t)
	}
	return exp, nil
}

func newAssignCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <employee-id> <zone>",
		Short: "Place an employee in a zone, moving it out of its current zone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.Assign(ctx, &handlers.AssignRequest{EmployeeID: args[0], Zone: args[1]})
			})
		},
	}
}

func newUnassignCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <employee-id> <zone>",
		Short: "Return an employee from a zone to the unassigned pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.Unassign(ctx, &handlers.AssignRequest{EmployeeID: args[0], Zone: args[1]})
			})
		},
	}
}

func newReorganizeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reorganize",
		Short: "Empty every zone and reseat the roster at random",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.AutoReorganize(ctx, &handlers.AutoReorganizeRequest{})
			})
		},
	}
}

func newZonesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "Show every zone with its capacity, occupants and allowlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.ListZones(ctx, &handlers.ListZonesRequest{})
			})
		},
	}
}

func newEligibleCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "eligible <role> <zone>",
		Short: "Check whether a role may occupy a zone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[0]) == "" || strings.TrimSpace(args[1]) == "" {
				return errors.New("role and zone are required")
			}
			return root.call(cmd, func(ctx context.Context, c *handlers.BoardServiceClient) (any, error) {
				return c.CheckEligibility(ctx, &handlers.CheckEligibilityRequest{Role: args[0], Zone: args[1]})
			})
		},
	}
}
