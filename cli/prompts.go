package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/michael-borck/venture-lab-sub000/prompts"
)

// ListPrompts prints the effective prompt for every tool.
func (a *App) ListPrompts() error {
	all := a.Prompts.All()

	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := all[id]
		kind := "default"
		if p.IsCustom {
			kind = "custom"
		}
		fmt.Printf("%-16s %-40s [%s]\n", id, p.Name, kind)
	}
	return nil
}

// ShowPrompt prints the template and variables for a tool.
func (a *App) ShowPrompt(toolID string) error {
	p, err := a.Prompts.Get(toolID)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n%s\n\n", p.Name, p.ID, p.Description)
	if p.SystemMessage != "" {
		fmt.Printf("System message:\n%s\n\n", p.SystemMessage)
	}
	fmt.Printf("Template:\n%s\n\n", p.Template)
	if len(p.Variables) > 0 {
		fmt.Println("Variables:")
		for _, v := range p.Variables {
			required := "optional"
			if v.Required {
				required = "required"
			}
			fmt.Printf("  {%s} (%s): %s\n", v.Name, required, v.Description)
		}
	}
	return nil
}

// EditPrompt replaces a tool's template with the contents of a file.
func (a *App) EditPrompt(toolID, templatePath string) error {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}

	p, err := a.Prompts.Get(toolID)
	if err != nil {
		return err
	}
	p.Template = string(template)

	if err := a.Prompts.Save(toolID, p); err != nil {
		return err
	}
	fmt.Printf("Saved custom prompt for %s\n", toolID)
	return nil
}

// ResetPrompt restores a tool's built-in prompt.
func (a *App) ResetPrompt(toolID string) error {
	if err := a.Prompts.Reset(toolID); err != nil {
		return err
	}
	fmt.Printf("Reset prompt for %s to default\n", toolID)
	return nil
}

// RenderPrompt substitutes values into a tool's template and prints the
// result. Unresolved placeholders are left intact.
func (a *App) RenderPrompt(toolID string, values map[string]string) error {
	p, err := a.Prompts.Get(toolID)
	if err != nil {
		return err
	}
	fmt.Println(prompts.Substitute(p.Template, values))
	return nil
}

// ExportPrompts writes the full collection to a file, or stdout when path
// is empty.
func (a *App) ExportPrompts(path string) error {
	data, err := a.Prompts.Export()
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Println(data)
		return nil
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Printf("Exported prompts to %s\n", path)
	return nil
}

// ImportPrompts replaces the collection with one read from a file. The
// input is validated before anything is overwritten.
func (a *App) ImportPrompts(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	if err := a.Prompts.Import(string(data)); err != nil {
		return err
	}
	fmt.Println("Imported prompts")
	return nil
}
