package ppd_test

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"printdoctor/internal/ppd"
)

const samplePPD = `*PPD-Adobe: "4.3"
*% Sample driver
*FormatVersion: "4.3"
*Manufacturer: "Acme"
*ModelName: "Acme LaserJet 9"
*NickName: "Acme LaserJet 9, driver 1.0"
*cupsFilter: "application/vnd.cups-raster 0 rastertoacme"
*cupsFilter: "application/vnd.cups-pdf 0 -"
*FoomaticRIPCommandLine: "gs -q -dBATCH &&
-sDEVICE=ijs -sIjsServer=hpijs%A%B -"
*End
*DefaultDuplex: None
*OpenUI *Duplex/2-Sided Printing: PickOne
*Duplex None/Off: ""
*Duplex DuplexNoTumble/Long Edge: ""
*CloseUI: *Duplex
*OpenGroup: General/General
*OpenUI *PageSize/Media Size: PickOne
*DefaultPageSize: A4
*PageSize Letter/US Letter: "<</PageSize[612 792]>>setpagedevice"
*PageSize A4/A4: "<</PageSize[595 842]>>setpagedevice"
*CloseUI: *PageSize
*CloseGroup: General
*OpenGroup: Extra/Extra Options
*OpenUI *Toner/Toner Saving: Boolean
*DefaultToner: False
*Toner True/On: ""
*Toner False/Off: ""
*CloseUI: *Toner
*OpenSubGroup: Color/Color Settings
*JCLOpenUI *JCLColor/Color Mode: PickOne
*DefaultJCLColor: Gray
*JCLColor Gray/Grayscale: "@PJL SET RENDERMODE=GRAYSCALE"
*JCLCloseUI: *JCLColor
*CloseSubGroup: Color
*CloseGroup: Extra
`

func mustParse(t *testing.T, src string) *ppd.File {
	t.Helper()
	file, err := ppd.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return file
}

func TestParseBuildsGroupTree(t *testing.T) {
	file := mustParse(t, samplePPD)

	if file.FormatVersion != "4.3" {
		t.Fatalf("unexpected format version %q", file.FormatVersion)
	}
	if len(file.OptionGroups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(file.OptionGroups))
	}
	general := file.OptionGroups[0]
	if general.Name != "General" || len(general.Options) != 2 {
		t.Fatalf("unexpected general group %+v", general)
	}
	if general.Options[0].Keyword != "Duplex" {
		t.Fatalf("expected ungrouped Duplex to land in General first, got %s", general.Options[0].Keyword)
	}

	extra := file.OptionGroups[1]
	if extra.Text != "Extra Options" || len(extra.Subgroups) != 1 {
		t.Fatalf("unexpected extra group %+v", extra)
	}
	color := extra.Subgroups[0].Options[0]
	if !color.JCL || color.Keyword != "JCLColor" {
		t.Fatalf("unexpected subgroup option %+v", color)
	}

	toner, ok := file.FindOption("*Toner")
	if !ok {
		t.Fatal("expected Toner option")
	}
	if toner.UI != ppd.UIBoolean || len(toner.Choices) != 2 {
		t.Fatalf("unexpected toner option %+v", toner)
	}
	if choice, ok := toner.Choice("True"); !ok || choice.Text != "On" {
		t.Fatalf("unexpected toner choice %+v", choice)
	}
}

func TestDefaultsFlattensGroupsAndSubgroups(t *testing.T) {
	defaults := mustParse(t, samplePPD).Defaults()

	general := defaults["General"]
	if general.Options["PageSize"] != "A4" {
		t.Fatalf("expected PageSize default A4, got %q", general.Options["PageSize"])
	}
	if general.Options["Duplex"] != "None" {
		t.Fatalf("expected default declared before OpenUI to apply, got %q", general.Options["Duplex"])
	}
	if len(general.Subgroups) != 0 {
		t.Fatalf("expected no subgroups in General, got %v", general.Subgroups)
	}

	extra := defaults["Extra"]
	if extra.Options["Toner"] != "False" {
		t.Fatalf("unexpected toner default %q", extra.Options["Toner"])
	}
	if extra.Subgroups["Color"]["JCLColor"] != "Gray" {
		t.Fatalf("unexpected subgroup defaults %v", extra.Subgroups)
	}
}

func TestAttributesKeepQuotedValues(t *testing.T) {
	file := mustParse(t, samplePPD)

	filters := file.FindAttrs("cupsFilter")
	if len(filters) != 2 {
		t.Fatalf("expected 2 cupsFilter lines, got %d", len(filters))
	}
	if filters[0].Value != "application/vnd.cups-raster 0 rastertoacme" {
		t.Fatalf("unexpected filter value %q", filters[0].Value)
	}

	rip, ok := file.FindAttr("FoomaticRIPCommandLine")
	if !ok {
		t.Fatal("expected FoomaticRIPCommandLine attribute")
	}
	if rip.Value != "gs -q -dBATCH &&\n-sDEVICE=ijs -sIjsServer=hpijs%A%B -" {
		t.Fatalf("unexpected multi-line value %q", rip.Value)
	}
	if file.NickName() != "Acme LaserJet 9, driver 1.0" {
		t.Fatalf("unexpected nickname %q", file.NickName())
	}
}

func TestParseRejectsStructuralErrors(t *testing.T) {
	header := "*PPD-Adobe: \"4.3\"\n"
	tests := []struct {
		name   string
		src    string
		status ppd.Status
		line   int
	}{
		{"missing header", "*FormatVersion: \"4.3\"\n", ppd.StatusMissingPPDAdobe4, 1},
		{"empty", "", ppd.StatusMissingPPDAdobe4, 0},
		{"nested open ui", header + "*OpenUI *A: PickOne\n*OpenUI *B: PickOne\n", ppd.StatusNestedOpenUI, 3},
		{"bad ui type", header + "*OpenUI *A: PickSome\n", ppd.StatusBadOpenUI, 2},
		{"close ui mismatch", header + "*OpenUI *A: PickOne\n*CloseUI: *B\n", ppd.StatusBadCloseUI, 3},
		{"close ui without open", header + "*CloseUI: *A\n", ppd.StatusBadCloseUI, 2},
		{"missing close ui", header + "*OpenUI *A: PickOne\n*A x: \"\"\n", ppd.StatusMissingCloseUI, 3},
		{"missing close group", header + "*OpenGroup: G\n", ppd.StatusMissingCloseGroup, 2},
		{"nested group", header + "*OpenGroup: G\n*OpenGroup: H\n", ppd.StatusNestedOpenGroup, 3},
		{"subgroup outside group", header + "*OpenSubGroup: S\n", ppd.StatusBadOpenGroup, 2},
		{"unterminated string", header + "*NickName: \"never closed\n*End\n", ppd.StatusUnterminatedString, 2},
		{"illegal character", header + "*NickName: \"bad\x01\"\n", ppd.StatusIllegalCharacter, 2},
		{"illegal keyword", header + "*" + strings.Repeat("K", 41) + ": x\n", ppd.StatusIllegalMainKeyword, 2},
		{"missing colon", header + "*Orphan value\n", ppd.StatusMissingValue, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ppd.Parse(strings.NewReader(tc.src))
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !errors.Is(err, ppd.ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			var syntaxErr *ppd.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("expected *SyntaxError, got %T", err)
			}
			if syntaxErr.Status != tc.status {
				t.Fatalf("status = %v, want %v", syntaxErr.Status, tc.status)
			}
			if syntaxErr.Line != tc.line {
				t.Fatalf("line = %d, want %d", syntaxErr.Line, tc.line)
			}
		})
	}
}

func TestParseIgnoresNonKeywordLinesAndCRLF(t *testing.T) {
	src := "*PPD-Adobe: \"4.3\"\r\nstray text\r\n\r\n*OpenUI *A/Alpha: PickOne\r\n*DefaultA: x\r\n*A x/X: \"\"\r\n*CloseUI: *A\r\n"
	file := mustParse(t, src)
	opt, ok := file.FindOption("A")
	if !ok || opt.DefChoice != "x" || opt.Text != "Alpha" {
		t.Fatalf("unexpected option %+v", opt)
	}
}

func TestOpenReadsGzipFiles(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(samplePPD)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	path := filepath.Join(t.TempDir(), "acme.ppd.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := ppd.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if file.Path != path || len(file.OptionGroups) != 2 {
		t.Fatalf("unexpected file %+v", file)
	}
}

func TestOpenMissingFileIsNotSyntaxError(t *testing.T) {
	_, err := ppd.Open(filepath.Join(t.TempDir(), "missing.ppd"))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ppd.ErrInvalid) {
		t.Fatalf("did not expect ErrInvalid for missing file: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
