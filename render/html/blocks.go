package html

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sonnes/lekha/core"
)

// renderTextBlock renders a text block. Assistant text is authored Markdown
// and goes through goldmark; user and system text is shown verbatim, with
// system-injected XML stripped from user prompts first.
func (r *Renderer) renderTextBlock(role core.Role, b core.ContentBlock) (template.HTML, error) {
	if role == core.RoleAssistant {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(b.Text), &buf); err != nil {
			return "", fmt.Errorf("goldmark convert: %w", err)
		}
		return template.HTML(`<div class="prose dark:prose-invert max-w-none">` + buf.String() + `</div>`), nil
	}

	text := b.Text
	if role == core.RoleUser {
		text = core.CleanUserText(text)
	}
	escaped := template.HTMLEscapeString(text)
	return template.HTML(`<p class="whitespace-pre-wrap text-sm">` + escaped + `</p>`), nil
}

func renderThinkingBlock(b core.ContentBlock) template.HTML {
	escaped := template.HTMLEscapeString(b.Text)
	h := `<details class="group">` +
		`<summary class="text-xs font-medium text-slate-400 dark:text-slate-500 cursor-pointer select-none">Thinking…</summary>` +
		`<pre class="mt-2 text-xs text-slate-500 dark:text-slate-400 whitespace-pre-wrap bg-slate-50 dark:bg-slate-900 rounded p-3 max-h-96 overflow-y-auto">` + escaped + `</pre>` +
		`</details>`
	return template.HTML(h)
}

// renderToolUseBlock renders a tool invocation card, folding in the paired
// tool_result when one exists.
func (r *Renderer) renderToolUseBlock(b core.ContentBlock, result *core.ContentBlock) (template.HTML, error) {
	inputJSON := formatToolInput(b.Input)

	var inputHTML string
	if inputJSON != "" {
		var buf bytes.Buffer
		fenced := "```json\n" + inputJSON + "\n```"
		if err := r.md.Convert([]byte(fenced), &buf); err != nil {
			inputHTML = `<pre class="px-4 py-3 text-xs font-mono overflow-x-auto">` + template.HTMLEscapeString(inputJSON) + `</pre>`
		} else {
			inputHTML = `<div class="px-4 py-3 text-xs overflow-x-auto">` + buf.String() + `</div>`
		}
	}

	var resultHTML string
	if result != nil {
		errorClass := ""
		textClass := ""
		if result.IsError {
			errorClass = " bg-red-50 dark:bg-red-950"
			textClass = " text-red-700 dark:text-red-400"
		}
		escaped := template.HTMLEscapeString(result.Content)
		resultHTML = `<div class="border-t border-slate-200 dark:border-slate-700` + errorClass + `">` +
			`<pre class="px-4 py-3 text-xs font-mono overflow-x-auto max-h-96 overflow-y-auto` + textClass + `">` + escaped + `</pre>` +
			`</div>`
	}

	toolName := b.Name
	if toolName == "" {
		toolName = "tool"
	}
	h := `<div class="bg-slate-50 dark:bg-slate-900 border border-slate-200 dark:border-slate-700 rounded-lg overflow-hidden">` +
		`<div class="px-4 py-2 border-b border-slate-200 dark:border-slate-700 flex items-center gap-2 text-slate-900 dark:text-white">` +
		`<span class="text-xs">&#9881;</span>` +
		`<span class="text-xs font-semibold font-mono">` + template.HTMLEscapeString(toolName) + `</span>` +
		`</div>` +
		inputHTML +
		resultHTML +
		`</div>`
	return template.HTML(h), nil
}

// renderToolResultBlock renders an orphan tool_result with no matching tool_use.
func renderToolResultBlock(b core.ContentBlock) template.HTML {
	escaped := template.HTMLEscapeString(b.Content)
	classes := "text-xs font-mono bg-slate-50 dark:bg-slate-900 rounded p-3 overflow-x-auto"
	if b.IsError {
		classes += " border-l-4 border-red-500 bg-red-50 dark:bg-red-950 text-red-700 dark:text-red-400"
	}
	return template.HTML(`<pre class="` + classes + `">` + escaped + `</pre>`)
}

func formatToolInput(input any) string {
	if input == nil {
		return ""
	}
	data, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(data)
}
