package prompts

import (
	"bytes"
	"errors"
	"fmt"
)

// Render executes a prompt template with the provided data and returns the result.
// The data type must match the expected type for the given prompt ID.
//
// Example:
//
//	prompt, err := prompts.Render(prompts.GroupChanges, prompts.GroupChangesData{
//	    Files:     files,
//	    Threshold: 3,
//	})
func Render(id PromptID, data any) (string, error) {
	if err := ValidateData(id, data); err != nil {
		return "", err
	}

	tmpl, err := globalRegistry.get(id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Join(ErrTemplateExecution, fmt.Errorf("prompt %s: %w", id, err))
	}

	return buf.String(), nil
}

// List returns all registered prompt IDs.
func List() []PromptID {
	return globalRegistry.list()
}

// Exists checks if a prompt ID is registered.
func Exists(id PromptID) bool {
	_, err := globalRegistry.get(id)
	return err == nil
}

// GetTemplate returns the raw template source for a prompt ID.
func GetTemplate(id PromptID) (string, error) {
	return globalRegistry.getSource(id)
}

// ValidateData checks that data has the type the prompt expects.
func ValidateData(id PromptID, data any) error {
	switch id {
	case GroupChanges:
		if _, ok := data.(GroupChangesData); !ok {
			return fmt.Errorf("%w: expected GroupChangesData, got %T", ErrInvalidData, data)
		}
	case CommitMessage, SimpleMessage:
		if _, ok := data.(CommitMessageData); !ok {
			return fmt.Errorf("%w: expected CommitMessageData, got %T", ErrInvalidData, data)
		}
	}
	return nil
}
