// Package seohdl chứa HTTP handler cho import, truy vấn và dashboard SEO.
package seohdl

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	basehdl "seo_dashboard/internal/api/base/handler"
	gscsvc "seo_dashboard/internal/api/gsc/service"
	seodto "seo_dashboard/internal/api/seo/dto"
	"seo_dashboard/internal/api/seo/models"
	seosvc "seo_dashboard/internal/api/seo/service"
	"seo_dashboard/internal/common"
	"seo_dashboard/internal/logger"
	"seo_dashboard/internal/utility"
)

// SEOHandler xử lý các route /seo
type SEOHandler struct {
	Imports   *seosvc.ImportService
	Dashboard *seosvc.DashboardService
	Clients   gscsvc.ClientFactory
}

// NewSEOHandler tạo SEOHandler
func NewSEOHandler(imports *seosvc.ImportService, dashboard *seosvc.DashboardService, clients gscsvc.ClientFactory) *SEOHandler {
	return &SEOHandler{Imports: imports, Dashboard: dashboard, Clients: clients}
}

func toImportResponse(r *seosvc.ImportResult) seodto.ImportResponse {
	return seodto.ImportResponse{
		Success:      true,
		ImportID:     r.ImportID,
		RecordCount:  r.RecordCount,
		SkippedCount: r.SkippedCount,
		DeletedCount: r.DeletedCount,
	}
}

// HandleImportGSC xử lý POST /seo/import/gsc: cần phiên GSC đã kết nối
func (h *SEOHandler) HandleImportGSC(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input seodto.ImportGSCInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return err
		}

		sessionID, creds, ok := gscsvc.CredentialsFrom(c.Context())
		if !ok {
			return common.ErrGSCNotConnected
		}
		client, err := h.Clients.Client(c.Context(), sessionID, creds)
		if err != nil {
			return common.WithDetails(common.ErrGSCUpstream, err)
		}

		result, err := h.Imports.ImportGSC(c.Context(), client, input.SiteURL, input.StartDate, input.EndDate)
		if err != nil {
			return err
		}
		logger.LogAction("seo_import_gsc", c, map[string]interface{}{
			"import_id":    result.ImportID,
			"site_url":     input.SiteURL,
			"record_count": result.RecordCount,
		})
		return basehdl.HandleResponse(c, toImportResponse(result), nil)
	})
}

// HandleImportAhrefs xử lý POST /seo/import/ahrefs (multipart: file, date tùy chọn)
func (h *SEOHandler) HandleImportAhrefs(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return common.WithDetails(common.ErrRequiredField, "file")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return common.WithDetails(common.ErrUnreadableFile, err)
		}
		defer file.Close()

		result, err := h.Imports.ImportAhrefs(c.Context(), fileHeader.Filename, file, strings.TrimSpace(c.FormValue("date")))
		if err != nil {
			return err
		}
		logger.LogAction("seo_import_ahrefs", c, map[string]interface{}{
			"import_id":    result.ImportID,
			"file_name":    fileHeader.Filename,
			"file_size":    utility.FormatBytes(uint64(fileHeader.Size)),
			"record_count": result.RecordCount,
		})
		return basehdl.HandleResponse(c, toImportResponse(result), nil)
	})
}

// HandleMetrics xử lý GET /seo/metrics
func (h *SEOHandler) HandleMetrics(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var params seodto.MetricsQueryParams
		if err := basehdl.ParseRequestQuery(c, &params); err != nil {
			return err
		}

		dimensions := utility.SplitList(params.Dimensions)

		result, err := h.Dashboard.QueryMetrics(c.Context(), seosvc.MetricsQuery{
			SiteURL:    params.SiteURL,
			StartDate:  params.StartDate,
			EndDate:    params.EndDate,
			Dimensions: dimensions,
			Source:     models.Source(params.Source),
			Page:       params.Page,
			Limit:      params.Limit,
		})
		if err != nil {
			return err
		}
		return basehdl.HandleResponse(c, seodto.MetricsResponse{
			Data: result.Items,
			Pagination: seodto.Pagination{
				Page:       result.Page,
				Limit:      result.Limit,
				Total:      result.Total,
				TotalPages: result.TotalPages,
				HasMore:    result.HasMore,
			},
		}, nil)
	})
}

// HandleClear xử lý POST /seo/clear
func (h *SEOHandler) HandleClear(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var input seodto.ClearInput
		if err := basehdl.ParseRequestBody(c, &input); err != nil {
			return err
		}

		deleted, err := h.Imports.Clear(c.Context(), input.Source, input.SiteURL)
		if err != nil {
			return err
		}
		var total int64
		for _, n := range deleted {
			total += n
		}
		logger.LogAction("seo_clear", c, map[string]interface{}{
			"source":   input.Source,
			"site_url": input.SiteURL,
			"deleted":  total,
		})
		return basehdl.HandleResponse(c, seodto.ClearResponse{Deleted: deleted, Total: total}, nil)
	})
}

// parseSection đọc body chung của các section dashboard
func parseSection(c fiber.Ctx) (seodto.DashboardSectionInput, error) {
	var input seodto.DashboardSectionInput
	if len(c.Body()) == 0 {
		return input, common.WithDetails(common.ErrRequiredField, "filters")
	}
	err := basehdl.ParseRequestBody(c, &input)
	return input, err
}

func sectionResponse(input seodto.DashboardSectionInput, section string, filters models.FilterOptions, data interface{}) seodto.DashboardSectionResponse {
	return seodto.DashboardSectionResponse{
		RequestID: input.RequestID,
		Section:   section,
		Filters:   filters,
		Data:      data,
	}
}

// HandleSummary xử lý POST /seo/dashboard/summary (quick view)
func (h *SEOHandler) HandleSummary(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		input, err := parseSection(c)
		if err != nil {
			return err
		}
		filters, summary, err := h.Dashboard.Summary(c.Context(), input.Filters)
		if err != nil {
			return err
		}
		return basehdl.HandleResponse(c, sectionResponse(input, seosvc.SectionQuickView, filters, summary), nil)
	})
}

// HandleChart xử lý POST /seo/dashboard/chart
func (h *SEOHandler) HandleChart(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		input, err := parseSection(c)
		if err != nil {
			return err
		}
		filters, series, err := h.Dashboard.Chart(c.Context(), input.Filters)
		if err != nil {
			return err
		}
		return basehdl.HandleResponse(c, sectionResponse(input, seosvc.SectionChart, filters, series), nil)
	})
}

// HandleTable xử lý POST /seo/dashboard/table
func (h *SEOHandler) HandleTable(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		input, err := parseSection(c)
		if err != nil {
			return err
		}
		filters, rows, err := h.Dashboard.Table(c.Context(), input.Filters, input.Page, input.Limit)
		if err != nil {
			return err
		}
		return basehdl.HandleResponse(c, sectionResponse(input, seosvc.SectionTable, filters, rows), nil)
	})
}

// HandlePresets xử lý GET /seo/presets
func (h *SEOHandler) HandlePresets(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		return basehdl.HandleResponse(c, h.Dashboard.Presets(), nil)
	})
}

// HandleListImports xử lý GET /seo/imports
func (h *SEOHandler) HandleListImports(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		var params seodto.ImportsQueryParams
		if err := basehdl.ParseRequestQuery(c, &params); err != nil {
			return err
		}
		result, err := h.Imports.ListImports(c.Context(), models.Source(params.Source), params.Page, params.Limit)
		return basehdl.HandleResponse(c, result, err)
	})
}

// HandleGetImport xử lý GET /seo/imports/:id
func (h *SEOHandler) HandleGetImport(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		record, err := h.Imports.GetImport(c.Context(), c.Params("id"))
		return basehdl.HandleResponse(c, record, err)
	})
}
