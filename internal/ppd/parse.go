package ppd

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	maxLineLength        = 256 * 1024
	maxNameLength        = 40
	maxTranslationLength = 80
	generalGroup         = "General"
)

// Open reads and parses the PPD at path. Gzip-compressed files are accepted.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ppd: %w", err)
	}
	defer f.Close()

	file, err := Parse(f)
	if err != nil {
		return nil, err
	}
	file.Path = path
	return file, nil
}

// Parse reads a PPD from r.
func Parse(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("open gzip ppd: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	p := &parser{
		scanner:  scanner,
		file:     &File{options: make(map[string]*Option)},
		defaults: make(map[string]string),
	}
	return p.run()
}

type entry struct {
	name  string
	spec  string
	text  string
	value string
	line  int
}

type parser struct {
	scanner *bufio.Scanner
	lineNo  int
	file    *File

	sawHeader bool
	group     *Group
	subgroup  *Subgroup
	option    *Option
	defaults  map[string]string
}

func (p *parser) run() (*File, error) {
	for {
		ent, err := p.readEntry()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if !p.sawHeader {
			if ent.name != "PPD-Adobe" {
				return nil, p.fail(ent.line, StatusMissingPPDAdobe4, "*"+ent.name)
			}
			p.sawHeader = true
			p.file.FormatVersion = ent.value
		}
		if err := p.apply(ent); err != nil {
			return nil, err
		}
		p.file.Attrs = append(p.file.Attrs, &Attr{
			Name:  ent.name,
			Spec:  ent.spec,
			Text:  ent.text,
			Value: ent.value,
			Line:  ent.line,
		})
	}

	if !p.sawHeader {
		return nil, p.fail(p.lineNo, StatusMissingPPDAdobe4, "empty file")
	}
	if p.option != nil {
		return nil, p.fail(p.lineNo, StatusMissingCloseUI, "*"+p.option.Keyword)
	}
	if p.group != nil {
		return nil, p.fail(p.lineNo, StatusMissingCloseGroup, p.group.Name)
	}

	for keyword, choice := range p.defaults {
		if opt, ok := p.file.options[keyword]; ok {
			opt.DefChoice = choice
		}
	}
	return p.file, nil
}

func (p *parser) fail(line int, status Status, detail string) error {
	return &SyntaxError{Line: line, Status: status, Detail: detail}
}

// scan advances to the next physical line. It returns false at EOF or on a
// read error, which is reported through scanErr.
func (p *parser) scan() bool {
	if !p.scanner.Scan() {
		return false
	}
	p.lineNo++
	return true
}

func (p *parser) scanErr() error {
	err := p.scanner.Err()
	if err == nil {
		return io.EOF
	}
	if errors.Is(err, bufio.ErrTooLong) {
		return p.fail(p.lineNo+1, StatusLineTooLong, "")
	}
	return fmt.Errorf("read ppd: %w", err)
}

func (p *parser) readEntry() (entry, error) {
	for {
		if !p.scan() {
			return entry{}, p.scanErr()
		}
		line := strings.TrimRight(p.scanner.Text(), "\r")
		if !strings.HasPrefix(line, "*") {
			// Lines outside keywords are tolerated, as libcups does in relaxed mode.
			continue
		}
		if strings.HasPrefix(line, "*%") || line == "*End" {
			continue
		}
		if idx := illegalCharIndex(line); idx >= 0 {
			return entry{}, p.fail(p.lineNo, StatusIllegalCharacter, fmt.Sprintf("column %d", idx+1))
		}
		return p.parseLine(line)
	}
}

func (p *parser) parseLine(line string) (entry, error) {
	ent := entry{line: p.lineNo}
	body := line[1:]

	nameEnd := strings.IndexAny(body, " \t:")
	if nameEnd < 0 {
		nameEnd = len(body)
	}
	ent.name = body[:nameEnd]
	if !validName(ent.name) {
		return entry{}, p.fail(p.lineNo, StatusIllegalMainKeyword, ent.name)
	}
	rest := body[nameEnd:]
	if strings.TrimSpace(rest) == "" {
		return ent, nil
	}

	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return entry{}, p.fail(p.lineNo, StatusMissingValue, "*"+ent.name)
	}
	if spec := strings.TrimSpace(rest[:colon]); spec != "" {
		keyword, text, _ := strings.Cut(spec, "/")
		if !validName(strings.TrimPrefix(keyword, "*")) {
			return entry{}, p.fail(p.lineNo, StatusIllegalOptionKeyword, keyword)
		}
		if len(text) > maxTranslationLength {
			return entry{}, p.fail(p.lineNo, StatusIllegalTranslation, keyword)
		}
		ent.spec = keyword
		ent.text = text
	}

	value := strings.TrimLeft(rest[colon+1:], " \t")
	if !strings.HasPrefix(value, `"`) {
		ent.value = strings.TrimRight(value, " \t")
		return ent, nil
	}

	start := p.lineNo
	chunk := value[1:]
	var sb strings.Builder
	for {
		if idx := strings.IndexByte(chunk, '"'); idx >= 0 {
			sb.WriteString(chunk[:idx])
			break
		}
		sb.WriteString(chunk)
		sb.WriteByte('\n')
		if !p.scan() {
			if err := p.scanErr(); !errors.Is(err, io.EOF) {
				return entry{}, err
			}
			return entry{}, p.fail(start, StatusUnterminatedString, "*"+ent.name)
		}
		chunk = strings.TrimRight(p.scanner.Text(), "\r")
	}
	ent.value = sb.String()
	return ent, nil
}

func (p *parser) apply(ent entry) error {
	switch ent.name {
	case "OpenGroup":
		if p.group != nil {
			return p.fail(ent.line, StatusNestedOpenGroup, p.group.Name)
		}
		name, text := splitTranslation(ent.value)
		if name == "" || len(name) > maxNameLength {
			return p.fail(ent.line, StatusBadOpenGroup, ent.value)
		}
		p.group = p.file.group(name, text)
	case "CloseGroup":
		p.group = nil
		p.subgroup = nil
	case "OpenSubGroup":
		if p.group == nil {
			return p.fail(ent.line, StatusBadOpenGroup, "OpenSubGroup outside a group")
		}
		if p.subgroup != nil {
			return p.fail(ent.line, StatusNestedOpenGroup, p.subgroup.Name)
		}
		name, text := splitTranslation(ent.value)
		if name == "" || len(name) > maxNameLength {
			return p.fail(ent.line, StatusBadOpenGroup, ent.value)
		}
		p.subgroup = p.group.subgroup(name, text)
	case "CloseSubGroup":
		p.subgroup = nil
	case "OpenUI", "JCLOpenUI":
		return p.openUI(ent)
	case "CloseUI", "JCLCloseUI":
		if p.option == nil {
			return p.fail(ent.line, StatusBadCloseUI, ent.value)
		}
		keyword := strings.TrimPrefix(strings.TrimSpace(ent.value), "*")
		if keyword != "" && keyword != p.option.Keyword {
			return p.fail(ent.line, StatusBadCloseUI, fmt.Sprintf("expected *%s, got *%s", p.option.Keyword, keyword))
		}
		p.option = nil
	default:
		if strings.HasPrefix(ent.name, "Default") && ent.spec == "" && len(ent.name) > len("Default") {
			p.defaults[strings.TrimPrefix(ent.name, "Default")] = ent.value
			return nil
		}
		if ent.spec != "" {
			if opt, ok := p.file.options[ent.name]; ok {
				opt.Choices = append(opt.Choices, Choice{Keyword: ent.spec, Text: ent.text, Code: ent.value})
			}
		}
	}
	return nil
}

func (p *parser) openUI(ent entry) error {
	if p.option != nil {
		return p.fail(ent.line, StatusNestedOpenUI, "*"+p.option.Keyword)
	}
	keyword := strings.TrimPrefix(ent.spec, "*")
	if keyword == "" {
		return p.fail(ent.line, StatusBadOpenUI, "missing option keyword")
	}
	ui, ok := parseUIType(ent.value)
	if !ok {
		return p.fail(ent.line, StatusBadOpenUI, ent.value)
	}

	opt, exists := p.file.options[keyword]
	if !exists {
		opt = &Option{Keyword: keyword}
		p.file.options[keyword] = opt
		switch {
		case p.subgroup != nil:
			p.subgroup.Options = append(p.subgroup.Options, opt)
		case p.group != nil:
			p.group.Options = append(p.group.Options, opt)
		default:
			general := p.file.group(generalGroup, generalGroup)
			general.Options = append(general.Options, opt)
		}
	}
	opt.Text = ent.text
	if opt.Text == "" {
		opt.Text = keyword
	}
	opt.UI = ui
	opt.JCL = ent.name == "JCLOpenUI"
	p.option = opt
	return nil
}

func parseUIType(value string) (UIType, bool) {
	switch strings.TrimSpace(value) {
	case "PickOne":
		return UIPickOne, true
	case "PickMany":
		return UIPickMany, true
	case "Boolean":
		return UIBoolean, true
	default:
		return 0, false
	}
}

func splitTranslation(value string) (string, string) {
	name, text, _ := strings.Cut(strings.TrimSpace(value), "/")
	return strings.TrimSpace(name), strings.TrimSpace(text)
}

func validName(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c <= ' ' || c >= 0x7f || c == ':' || c == '/' {
			return false
		}
	}
	return true
}

func illegalCharIndex(line string) int {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if (c < ' ' && c != '\t' && c != '\f') || c == 0x7f {
			return i
		}
	}
	return -1
}
