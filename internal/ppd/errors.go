package ppd

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by every *SyntaxError.
var ErrInvalid = errors.New("invalid ppd")

// Status identifies why a PPD was rejected.
type Status int

const (
	StatusMissingPPDAdobe4 Status = iota + 1
	StatusMissingValue
	StatusBadOpenGroup
	StatusNestedOpenGroup
	StatusBadOpenUI
	StatusNestedOpenUI
	StatusIllegalCharacter
	StatusIllegalMainKeyword
	StatusIllegalOptionKeyword
	StatusIllegalTranslation
	StatusLineTooLong
	StatusMissingCloseGroup
	StatusBadCloseUI
	StatusMissingCloseUI
	StatusUnterminatedString
)

var statusText = map[Status]string{
	StatusMissingPPDAdobe4:     "Missing PPD-Adobe-4.x header",
	StatusMissingValue:         "Missing value string",
	StatusBadOpenGroup:         "Bad OpenGroup",
	StatusNestedOpenGroup:      "OpenGroup without a CloseGroup first",
	StatusBadOpenUI:            "Bad OpenUI/JCLOpenUI",
	StatusNestedOpenUI:         "OpenUI/JCLOpenUI without a CloseUI/JCLCloseUI first",
	StatusIllegalCharacter:     "Illegal control character",
	StatusIllegalMainKeyword:   "Illegal main keyword string",
	StatusIllegalOptionKeyword: "Illegal option keyword string",
	StatusIllegalTranslation:   "Illegal translation string",
	StatusLineTooLong:          "Line longer than the maximum allowed",
	StatusMissingCloseGroup:    "Missing CloseGroup",
	StatusBadCloseUI:           "Bad CloseUI/JCLCloseUI",
	StatusMissingCloseUI:       "Missing CloseUI/JCLCloseUI",
	StatusUnterminatedString:   "Unterminated quoted string",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("status %d", int(s))
}

// SyntaxError reports the first structural problem found in a PPD.
type SyntaxError struct {
	Line   int
	Status Status
	Detail string
}

func (e *SyntaxError) Error() string {
	msg := fmt.Sprintf("ppd: line %d: %s", e.Line, e.Status)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *SyntaxError) Unwrap() error { return ErrInvalid }
