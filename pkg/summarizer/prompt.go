package summarizer

import (
	"fmt"
	"strings"
)

// EmptyIndicatorText 指标下没有任何非空描述时的固定文本（不调用生成服务）
func EmptyIndicatorText(indicator string) string {
	return fmt.Sprintf("No accomplishments recorded for indicator: %s.", indicator)
}

// SummaryPrompt 多条工作记录合并为一条指标汇总的提示词
func SummaryPrompt(indicator string, descriptions []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the following accomplishments for the success indicator '%s':\n\n", indicator)
	for _, d := range descriptions {
		b.WriteString("- ")
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString("\nWrite in a concise, factual way about what was achieved.")
	return b.String()
}

// DescriptionPrompt 由申请描述与人员执行记录生成一句工作记录描述的提示词
func DescriptionPrompt(requestDescription string, reports []string) string {
	desc := strings.TrimSpace(requestDescription)
	if desc == "" {
		desc = "No description provided."
	}

	lines := make([]string, 0, len(reports))
	for _, r := range reports {
		if r = strings.TrimSpace(r); r != "" {
			lines = append(lines, "- "+r)
		}
	}
	notes := strings.Join(lines, "\n")
	if notes == "" {
		notes = "No personnel reports available."
	}

	return "You are an AI that generates short, professional government work logs.\n\n" +
		"Requestor description:\n" + desc + "\n\n" +
		"Personnel task reports:\n" + notes + "\n\n" +
		"Write ONE concise sentence that summarizes the accomplishment clearly and factually. " +
		"Do not include names or personnel, focus only on the task performed. " +
		"Keep it formal, brief, and specific."
}
