// Package file keeps pillmate's user-editable state under ~/.pillmate:
// config.toml (ConfigStore) and the LLM prompt templates (PromptStore).
package file
