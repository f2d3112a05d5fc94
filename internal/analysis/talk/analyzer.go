// Package talk classifies client utterances as change talk or sustain talk
// with keyword heuristics, the way motivational interviewing transcripts are
// usually coded.
package talk

import (
	"strings"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// Kind 表示一句来访者话语的类别。
type Kind string

const (
	Neutral Kind = "neutral"
	Change  Kind = "change"
	Sustain Kind = "sustain"
)

// Decision 给出分类结果以及命中的关键词得分。
type Decision struct {
	Kind  Kind `json:"kind"`
	Score int  `json:"score"`
}

var keywordBuckets = map[Kind][]string{
	Change: {
		"i want to", "i'd like to", "i wish", "i could", "i can", "i will", "i'm going to", "i need to",
		"ready to", "willing to", "i should", "try to", "plan to", "cut down", "cut back", "quit",
		"better for", "worth it", "for my kids", "for my family", "i've been thinking", "maybe i",
		"想改变", "打算", "愿意", "准备好", "我可以", "我会试",
	},
	Sustain: {
		"i don't want", "i can't", "i won't", "not ready", "no problem", "not a problem", "it's fine",
		"i'm fine", "everyone does", "i enjoy", "helps me relax", "not that bad", "too hard",
		"no point", "why should", "i don't need", "my choice", "leave me alone", "not now",
		"没问题", "不想", "做不到", "没必要", "不需要",
	},
}

// hedges weaken a change statement ("I could quit, but ...").
var hedges = []string{" but ", " though", "however", "不过", "但是"}

// Classify 根据关键词给一句话打分，分数相同时视为中性。
func Classify(utterance string) Decision {
	normalized := " " + strings.TrimSpace(strings.ToLower(utterance)) + " "
	if strings.TrimSpace(normalized) == "" {
		return Decision{Kind: Neutral}
	}

	scores := make(map[Kind]int, len(keywordBuckets))
	for kind, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[kind] += 3
			}
		}
	}
	if scores[Change] > 0 {
		for _, h := range hedges {
			if strings.Contains(normalized, h) {
				scores[Change] /= 2
				break
			}
		}
	}

	switch {
	case scores[Change] > scores[Sustain]:
		return Decision{Kind: Change, Score: scores[Change]}
	case scores[Sustain] > scores[Change]:
		return Decision{Kind: Sustain, Score: scores[Sustain]}
	default:
		return Decision{Kind: Neutral}
	}
}

// Balance counts client utterances per kind across a conversation.
type Balance struct {
	Change  int `json:"change"`
	Sustain int `json:"sustain"`
	Neutral int `json:"neutral"`
	// Trend compares the second half of the session with the first:
	// positive when change talk grows.
	Trend float64 `json:"trend"`
}

// Ratio is the share of change talk among non-neutral utterances, or 0 when
// the client said nothing classifiable.
func (b Balance) Ratio() float64 {
	total := b.Change + b.Sustain
	if total == 0 {
		return 0
	}
	return float64(b.Change) / float64(total)
}

// Summarize classifies every client turn.
func Summarize(turns []chat.Turn) Balance {
	var (
		b     Balance
		kinds []Kind
	)
	for _, turn := range turns {
		if turn.Role != chat.RoleClient {
			continue
		}
		d := Classify(turn.Content)
		kinds = append(kinds, d.Kind)
		switch d.Kind {
		case Change:
			b.Change++
		case Sustain:
			b.Sustain++
		default:
			b.Neutral++
		}
	}

	half := len(kinds) / 2
	if half > 0 {
		b.Trend = net(kinds[len(kinds)-half:]) - net(kinds[:half])
	}
	return b
}

func net(kinds []Kind) float64 {
	n := 0
	for _, k := range kinds {
		switch k {
		case Change:
			n++
		case Sustain:
			n--
		}
	}
	return float64(n) / float64(len(kinds))
}
