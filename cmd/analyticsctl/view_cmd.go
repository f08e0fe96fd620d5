package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/service"
)

type sortFlags struct {
	field string
	desc  bool
}

func (f *sortFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.field, "sort", "", "Column to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
}

func (f *sortFlags) spec() (*models.SortSpec, error) {
	direction := string(models.SortAscending)
	if f.desc {
		direction = string(models.SortDescending)
	}
	return service.ParseSort(f.field, direction)
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard charts and top students",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewDashboard); err != nil {
				return err
			}
			view, err := c.app.Dashboard.Load(cmd.Context())
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func (c *cli) studentsCmd() *cobra.Command {
	var sorting sortFlags
	cmd := &cobra.Command{
		Use:   "students",
		Short: "List every student",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewStudents); err != nil {
				return err
			}
			spec, err := sorting.spec()
			if err != nil {
				return err
			}
			if err := c.app.Students.SetSort(spec); err != nil {
				return err
			}
			table, err := c.app.Students.List(cmd.Context())
			if err != nil {
				return err
			}
			printStudents(cmd.OutOrStdout(), table)
			return nil
		},
	}
	sorting.bind(cmd)
	return cmd
}

func (c *cli) coursesCmd() *cobra.Command {
	var sorting sortFlags
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "List courses with enrolment and average progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewCourses); err != nil {
				return err
			}
			spec, err := sorting.spec()
			if err != nil {
				return err
			}
			table, err := c.app.Courses.List(cmd.Context(), spec)
			if err != nil {
				return err
			}
			printCourses(cmd.OutOrStdout(), table)
			return nil
		},
	}
	sorting.bind(cmd)
	return cmd
}

func (c *cli) courseCmd() *cobra.Command {
	var sorting sortFlags
	cmd := &cobra.Command{
		Use:   "course <name>",
		Short: "List the students of one course",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewCourseDetail); err != nil {
				return err
			}
			spec, err := sorting.spec()
			if err != nil {
				return err
			}
			detail, err := c.app.Courses.Detail(cmd.Context(), strings.Join(args, " "), spec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", detail.Course)
			printStudents(cmd.OutOrStdout(), &detail.Students)
			return nil
		},
	}
	sorting.bind(cmd)
	return cmd
}

func (c *cli) searchCmd() *cobra.Command {
	var sorting sortFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search students",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewSearch); err != nil {
				return err
			}
			spec, err := sorting.spec()
			if err != nil {
				return err
			}
			result, err := c.app.Search.Search(cmd.Context(), strings.Join(args, " "), spec)
			if err != nil {
				return err
			}
			printStudents(cmd.OutOrStdout(), &result.Results)
			return nil
		},
	}
	sorting.bind(cmd)
	return cmd
}

func (c *cli) reportCmd() *cobra.Command {
	var req models.ReportRequest
	var format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the filtered student list to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewReports); err != nil {
				return err
			}
			// One-shot runs wait for the serializers instead of reporting them as loading.
			c.app.Exports.Wait()
			req.Format = models.ReportFormat(format)
			result, err := c.app.Reports.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			dir := c.outDir
			if dir == "" {
				dir = "."
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d students to %s\n", result.Rows, filepath.Join(dir, filepath.FromSlash(result.RelativePath)))
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Course, "course", models.FilterAll, "Course filter")
	cmd.Flags().StringVar(&req.Engagement, "engagement", models.FilterAll, "Engagement filter (High, Medium, Low)")
	cmd.Flags().StringVar(&format, "format", string(models.ReportFormatXLSX), "Output format: xlsx, csv or pdf")
	cmd.Flags().StringVar(&c.outDir, "out", ".", "Directory the report is written to")
	return cmd
}

func (c *cli) profileCmd() *cobra.Command {
	var update models.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the account, or change it with --email",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewProfile); err != nil {
				return err
			}
			if update.Email != "" || update.Password != "" {
				message, err := c.app.Profile.Update(cmd.Context(), update)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			}
			profile, err := c.app.Profile.Get(cmd.Context())
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Username\t%s\n", profile.Username)
			fmt.Fprintf(tw, "Email\t%s\n", profile.Email)
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&update.Email, "email", "", "New email address")
	cmd.Flags().StringVar(&update.Password, "password", "", "New password")
	return cmd
}

func (c *cli) settingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show console settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.enter(models.ViewSettings); err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), c.app.Settings.View())
			return nil
		},
	}
}
