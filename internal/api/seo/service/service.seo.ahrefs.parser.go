package seosvc

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/xuri/excelize/v2"

	"seo_dashboard/internal/api/seo/models"
	"seo_dashboard/internal/common"
)

// ahrefsColumn là cột đích khi map header của export Ahrefs
type ahrefsColumn int

const (
	colUnknown ahrefsColumn = iota
	colKeyword
	colURL
	colPosition
	colVolume
	colDifficulty
	colCPC
	colTraffic
	colDate
	colPreviousTraffic
	colPreviousPosition
	colPreviousDate
	colTrafficChange
	colPositionChange
)

// ahrefsHeaderAliases: header đã chuẩn hóa (chữ thường, bỏ ký tự không phải chữ/số) -> cột
var ahrefsHeaderAliases = map[string]ahrefsColumn{
	"keyword":                colKeyword,
	"keywords":               colKeyword,
	"query":                  colKeyword,
	"url":                    colURL,
	"currenturl":             colURL,
	"targeturl":              colURL,
	"page":                   colURL,
	"position":               colPosition,
	"currentposition":        colPosition,
	"pos":                    colPosition,
	"volume":                 colVolume,
	"searchvolume":           colVolume,
	"difficulty":             colDifficulty,
	"kd":                     colDifficulty,
	"keyworddifficulty":      colDifficulty,
	"cpc":                    colCPC,
	"traffic":                colTraffic,
	"currenttraffic":         colTraffic,
	"organictraffic":         colTraffic,
	"date":                   colDate,
	"currentdate":            colDate,
	"previoustraffic":        colPreviousTraffic,
	"previousorganictraffic": colPreviousTraffic,
	"previousposition":       colPreviousPosition,
	"previousdate":           colPreviousDate,
	"trafficchange":          colTrafficChange,
	"positionchange":         colPositionChange,
}

// normalizeHeader bỏ BOM, khoảng trắng, dấu câu và chuyển về chữ thường
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseNumber đọc số từ ô export: bỏ %, $, khoảng trắng và dấu ngăn cách hàng nghìn.
// decimalComma dùng cho export kiểu châu Âu (phân cách ';'): ',' là dấu thập phân, '.' ngăn cách hàng nghìn.
// Ô rỗng, "-" hoặc "n/a" trả về nil.
func parseNumber(raw string, decimalComma bool) *float64 {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "-", "n/a", "na", "null":
		return nil
	}
	s = strings.NewReplacer("%", "", "$", "", "€", "", " ", "", "\u00a0", "").Replace(s)
	if decimalComma {
		s = normalizeDecimalComma(s)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return finite(&v)
}

// normalizeDecimalComma chuyển "1.234,5" thành "1234.5".
// Không có ',' thì '.' chỉ là ngăn cách hàng nghìn khi mọi nhóm sau nó đủ 3 chữ số ("1.234", "12.345.678").
func normalizeDecimalComma(s string) string {
	if strings.Contains(s, ",") {
		return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	}
	groups := strings.Split(s, ".")
	if len(groups) < 2 {
		return s
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return s
		}
	}
	return strings.Join(groups, "")
}

// recordsToAhrefsRows map bảng (dòng đầu là header) thành AhrefsRow
func recordsToAhrefsRows(records [][]string, decimalComma bool) ([]models.AhrefsRow, error) {
	if len(records) == 0 {
		return nil, common.WithDetails(common.ErrUnreadableFile, "file rỗng")
	}

	columns := make([]ahrefsColumn, len(records[0]))
	var hasKeyword, hasURL bool
	for i, h := range records[0] {
		col := ahrefsHeaderAliases[normalizeHeader(h)]
		columns[i] = col
		hasKeyword = hasKeyword || col == colKeyword
		hasURL = hasURL || col == colURL
	}
	if !hasKeyword && !hasURL {
		return nil, common.WithDetails(common.ErrUnreadableFile, "thiếu cột keyword hoặc url")
	}

	rows := make([]models.AhrefsRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlankRecord(rec) {
			continue
		}
		var row models.AhrefsRow
		for i, cell := range rec {
			if i >= len(columns) {
				break
			}
			switch columns[i] {
			case colKeyword:
				row.Keyword = strings.TrimSpace(cell)
			case colURL:
				row.URL = strings.TrimSpace(cell)
			case colPosition:
				row.Position = parseNumber(cell, decimalComma)
			case colVolume:
				row.Volume = parseNumber(cell, decimalComma)
			case colDifficulty:
				row.Difficulty = parseNumber(cell, decimalComma)
			case colCPC:
				row.CPC = parseNumber(cell, decimalComma)
			case colTraffic:
				row.Traffic = parseNumber(cell, decimalComma)
			case colDate:
				row.Date = strings.TrimSpace(cell)
			case colPreviousTraffic:
				row.PreviousTraffic = parseNumber(cell, decimalComma)
			case colPreviousPosition:
				row.PreviousPosition = parseNumber(cell, decimalComma)
			case colPreviousDate:
				row.PreviousDate = strings.TrimSpace(cell)
			case colTrafficChange:
				row.TrafficChange = parseNumber(cell, decimalComma)
			case colPositionChange:
				row.PositionChange = parseNumber(cell, decimalComma)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// decodeText xử lý BOM UTF-8 và UTF-16 (Ahrefs xuất CSV dạng UTF-16LE + tab)
func decodeText(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16(data[2:], false)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16(data[2:], true)
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:])
	}
	return string(data)
}

func decodeUTF16(data []byte, bigEndian bool) string {
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		if bigEndian {
			units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
		} else {
			units = append(units, uint16(data[i+1])<<8|uint16(data[i]))
		}
	}
	return string(utf16.Decode(units))
}

// detectDelimiter chọn dấu phân cách xuất hiện nhiều nhất ở dòng header
func detectDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	best, bestCount := ',', strings.Count(header, ",")
	for _, d := range []rune{'\t', ';'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// ParseAhrefsCSV đọc export Ahrefs dạng CSV/TSV (UTF-8 hoặc UTF-16)
func ParseAhrefsCSV(r io.Reader) ([]models.AhrefsRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.WithDetails(common.ErrUnreadableFile, err)
	}
	text := decodeText(data)

	delimiter := detectDelimiter(text)
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, common.WithDetails(common.ErrUnreadableFile, err)
	}
	return recordsToAhrefsRows(records, delimiter == ';')
}

// ParseAhrefsXLSX đọc sheet đầu tiên của export Ahrefs dạng Excel
func ParseAhrefsXLSX(r io.Reader) ([]models.AhrefsRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, common.WithDetails(common.ErrUnreadableFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.WithDetails(common.ErrUnreadableFile, "workbook không có sheet")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.WithDetails(common.ErrUnreadableFile, err)
	}
	return recordsToAhrefsRows(records, false)
}

// ParseAhrefsFile chọn parser theo phần mở rộng của file
func ParseAhrefsFile(fileName string, r io.Reader) ([]models.AhrefsRow, error) {
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".xlsx", ".xlsm":
		return ParseAhrefsXLSX(r)
	case ".csv", ".tsv", ".txt", "":
		return ParseAhrefsCSV(r)
	default:
		return nil, common.WithDetails(common.ErrUnreadableFile, fmt.Sprintf("không hỗ trợ định dạng %s", ext))
	}
}
