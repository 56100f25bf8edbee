package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Правила проверки текста
	LintUppercaseWord Code = 1001
	LintBannedToken   Code = 1002

	// Сбой анализатора
	EngineFailure Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode:       "Unknown error",
	LintUppercaseWord: "All-uppercase word",
	LintBannedToken:   "Banned token",
	EngineFailure:     "Analysis failed",
}

// ID returns the stable short identifier sent to clients, e.g. "LNT1002".
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ENG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
