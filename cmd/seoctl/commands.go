package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"seo_dashboard/internal/api/seo/models"
	seosvc "seo_dashboard/internal/api/seo/service"
)

// cliServices là các service mà lệnh cần
type cliServices struct {
	Imports *seosvc.ImportService
	Close   func()
}

// servicesOpener mở kết nối và dựng service; test truyền bản dùng store trong bộ nhớ
type servicesOpener func(ctx context.Context, envFile string) (*cliServices, error)

// errNotConfirmed trả về khi clear chạy thiếu --yes
var errNotConfirmed = errors.New("thêm --yes để xác nhận xóa dữ liệu")

func newRootCmd(open servicesOpener, out io.Writer) *cobra.Command {
	var envFile string

	withServices := func(cmd *cobra.Command, fn func(ctx context.Context, svc *cliServices) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		svc, err := open(ctx, envFile)
		if err != nil {
			return err
		}
		if svc.Close != nil {
			defer svc.Close()
		}
		return fn(ctx, svc)
	}

	root := &cobra.Command{
		Use:           "seoctl",
		Short:         "Vận hành SEO dashboard: import, clear, lịch sử import",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&envFile, "env", "", "File env (mặc định config/env/$GO_ENV.env)")

	root.AddCommand(
		newImportAhrefsCmd(withServices, out),
		newClearCmd(withServices, out),
		newImportsCmd(withServices, out),
		newFailStaleCmd(withServices, out),
		newPresetsCmd(out),
	)
	return root
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, svc *cliServices) error) error

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newImportAhrefsCmd(run runner, out io.Writer) *cobra.Command {
	var file, date string
	cmd := &cobra.Command{
		Use:   "import-ahrefs",
		Short: "Import file export Ahrefs (CSV/TSV/XLSX), thay thế toàn bộ dữ liệu Ahrefs",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("mở file: %w", err)
			}
			defer f.Close()

			return run(cmd, func(ctx context.Context, svc *cliServices) error {
				result, err := svc.Imports.ImportAhrefs(ctx, filepath.Base(file), f, date)
				if err != nil {
					return err
				}
				return printJSON(out, result)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Đường dẫn file export")
	cmd.Flags().StringVar(&date, "date", "", "Ngày snapshot YYYY-MM-DD (mặc định hôm nay)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newClearCmd(run runner, out io.Writer) *cobra.Command {
	var source, site string
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Xóa dữ liệu đã import (gsc, ahrefs hoặc all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			return run(cmd, func(ctx context.Context, svc *cliServices) error {
				deleted, err := svc.Imports.Clear(ctx, source, site)
				if err != nil {
					return err
				}
				return printJSON(out, deleted)
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "gsc | ahrefs | all")
	cmd.Flags().StringVar(&site, "site", "", "Chỉ xóa dữ liệu GSC của property này")
	cmd.Flags().BoolVar(&yes, "yes", false, "Xác nhận xóa")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}

func newImportsCmd(run runner, out io.Writer) *cobra.Command {
	var source string
	var page, limit int64
	cmd := &cobra.Command{
		Use:   "imports",
		Short: "Liệt kê lịch sử import mới nhất",
		RunE: func(cmd *cobra.Command, args []string) error {
			var src models.Source
			if source != "" {
				parsed, err := models.ParseSource(source)
				if err != nil {
					return err
				}
				src = parsed
			}
			return run(cmd, func(ctx context.Context, svc *cliServices) error {
				result, err := svc.Imports.ListImports(ctx, src, page, limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tRECORDS\tSITE/FILE\tCREATED")
				for _, rec := range result.Items {
					target := rec.SiteURL
					if target == "" {
						target = rec.FileName
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
						rec.ID.Hex(), rec.Source, rec.Status, rec.RecordCount, target,
						time.Unix(rec.CreatedAt, 0).UTC().Format(time.RFC3339))
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(out, "page %d/%d, total %d\n", result.Page, result.TotalPages, result.Total)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Lọc theo nguồn (gsc | ahrefs)")
	cmd.Flags().Int64Var(&page, "page", 1, "Trang")
	cmd.Flags().Int64Var(&limit, "limit", 20, "Số dòng mỗi trang")
	return cmd
}

func newFailStaleCmd(run runner, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "fail-stale",
		Short: "Chuyển các import pending quá IMPORT_TIMEOUT_MINUTES sang failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc *cliServices) error {
				n, err := svc.Imports.FailStaleImports(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "marked %d stale import(s) as failed\n", n)
				return nil
			})
		},
	}
}

func newPresetsCmd(out io.Writer) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "In các preset khoảng ngày tính theo hôm nay (hoặc --at)",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			if at != "" {
				t, err := time.Parse(models.DateLayout, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				now = t
			}
			return printJSON(out, seosvc.ListPresets(now))
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Ngày tham chiếu YYYY-MM-DD")
	return cmd
}
