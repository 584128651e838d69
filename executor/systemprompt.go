package executor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sidwan02/subagentengine/chatadapter"
	"github.com/sidwan02/subagentengine/env"
	"github.com/sidwan02/subagentengine/internal/config"
	"github.com/sidwan02/subagentengine/registry"
	"github.com/sidwan02/subagentengine/subagentspec"
)

// importantRulesBlock is the fixed §4.1.5 step 4 block, appended to
// every assembled system prompt regardless of model backend.
const importantRulesBlock = `Important Rules:
- You are operating in non-interactive mode. There is no operator to ask for clarification.
- Use absolute paths for every file or directory argument.
- You must end the task by calling complete_task.
- Do not call complete_task in the same turn as any other tool.`

// assembleSystemPrompt builds the once-per-run system prompt of §4.1.5:
// interpolate the template against inputs plus directive/tool_code
// tokens, append the environment-context block, then the fixed rules
// block.
func assembleSystemPrompt(
	def subagentspec.Definition,
	inputs map[string]string,
	decls []registry.Declaration,
	isLocal bool,
	hostCtx env.HostContext,
	model string,
) (string, error) {
	values := make(map[string]string, len(inputs)+2)
	for k, v := range inputs {
		values[k] = v
	}
	values["directive"] = def.Prompt.Directive

	toolCode, err := renderToolCode(decls, isLocal)
	if err != nil {
		return "", err
	}
	values["tool_code"] = toolCode

	body, err := subagentspec.Interpolate(def.Prompt.SystemPromptTemplate, values)
	if err != nil {
		return "", fmt.Errorf("executor: assemble system prompt: %w", err)
	}

	var b strings.Builder
	if skillsBlock := loadSkillsBlock(def.Prompt.SkillDirs); skillsBlock != "" {
		b.WriteString(skillsBlock)
		b.WriteString("\n")
	}
	b.WriteString(body)
	if body != "" {
		b.WriteString("\n\n")
	}
	b.WriteString(env.Describe(hostCtx, model))
	b.WriteString("\n")
	b.WriteString(importantRulesBlock)
	return b.String(), nil
}

// loadSkillsBlock loads and formats the definition's skill directories,
// if any. A load error (missing directory, unreadable file) never fails
// the run; the skill is just absent from the prompt.
func loadSkillsBlock(dirs []string) string {
	if len(dirs) == 0 {
		return ""
	}
	skills, err := config.LoadSkills(dirs...)
	if err != nil || len(skills) == 0 {
		return ""
	}
	return config.FormatSkillsPrompt(skills)
}

// renderToolCode renders the active tool schema set for embedding into
// a system prompt. Local-model agents get the Gemma-compatible
// transform of §4.1.5 step 2; remote agents get the declarations as
// plain JSON, since the remote adapter also sends the schema natively
// and this block is a readable reference rather than the wire format.
func renderToolCode(decls []registry.Declaration, isLocal bool) (string, error) {
	if isLocal {
		return chatadapter.GemmaToolCode(decls)
	}
	out, err := json.MarshalIndent(decls, "", "  ")
	if err != nil {
		return "", fmt.Errorf("executor: render tool_code: %w", err)
	}
	return string(out), nil
}
