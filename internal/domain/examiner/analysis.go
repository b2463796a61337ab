package examiner

import (
	"regexp"
	"strings"
)

// Analysis describes the shape of a candidate answer, independent of content.
type Analysis struct {
	Words      int  `json:"words"`
	Markers    int  `json:"markers"`
	Structured bool `json:"structured"`
	Hedges     int  `json:"hedges"`
}

var bulletLine = regexp.MustCompile(`(?m)^\s*(?:[-*•]|\d+[.)])\s+`)

var ordinalWords = map[string]bool{
	"first":    true,
	"firstly":  true,
	"second":   true,
	"secondly": true,
	"third":    true,
	"thirdly":  true,
	"then":     true,
	"next":     true,
	"finally":  true,
	"lastly":   true,
}

var hedgePhrases = []string{
	"i think",
	"i guess",
	"i believe",
	"maybe",
	"perhaps",
	"probably",
	"not sure",
	"might be",
	"possibly",
}

// minStructureMarkers is the marker count above which an answer reads as a list.
const minStructureMarkers = 2

// Analyze measures length, list structure and hedging of an answer.
func Analyze(answer string) Analysis {
	a := Analysis{Words: len(strings.Fields(answer))}

	a.Markers += len(bulletLine.FindAllStringIndex(answer, -1))
	a.Markers += strings.Count(answer, ";")
	a.Markers += strings.Count(answer, ",")

	toks := tokens(Normalize(answer))
	for _, tok := range toks {
		if ordinalWords[tok] {
			a.Markers++
		}
	}
	a.Structured = a.Markers >= minStructureMarkers

	padded := " " + strings.Join(toks, " ") + " "
	for _, phrase := range hedgePhrases {
		a.Hedges += strings.Count(padded, " "+phrase+" ")
	}

	return a
}
