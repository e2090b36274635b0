package ai

import "strings"

// moodRule maps keywords found in a reply to the mood tag it carries.
// Rules are tested in order; the first match wins.
type moodRule struct {
	keywords []string
	mood     string
}

var moodRules = []moodRule{
	{keywords: []string{"喜欢", "好耶", "开心"}, mood: "开心"},
	{keywords: []string{"饿", "想要"}, mood: "期待"},
	{keywords: []string{"玩", "兴奋"}, mood: "兴奋"},
	{keywords: []string{"累", "困"}, mood: "慵懒"},
	{keywords: []string{"爱"}, mood: "爱意"},
}

// DeriveMood tags a reply with a mood based on its own text. The pass runs
// over the generated output, so a fixed reply always yields the same mood.
func DeriveMood(reply string) string {
	for _, rule := range moodRules {
		for _, kw := range rule.keywords {
			if strings.Contains(reply, kw) {
				return rule.mood
			}
		}
	}
	return "平静"
}
