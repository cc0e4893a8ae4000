package view

import (
	"slices"

	"github.com/nao1215/webrisk/internal/model"
)

// labelEntry pairs a flag key with its human-readable label.
type labelEntry struct {
	key   string
	label string
}

// categoryLabels is the category label table in display order.
var categoryLabels = []labelEntry{
	{key: "is_torrent", label: "Torrenting"},
	{key: "is_vpn_provider", label: "VPN Provider"},
	{key: "is_free_hosting", label: "Free Hosting"},
	{key: "is_anonymizer", label: "Anonymizer"},
	{key: "is_url_shortener", label: "URL Shortener"},
	{key: "is_free_dynamic_dns", label: "Free Dynamic DNS"},
	{key: "is_code_sandbox", label: "Code Sandbox"},
	{key: "is_form_builder", label: "Form Builder"},
	{key: "is_free_file_sharing", label: "Free File Sharing"},
	{key: "is_pastebin", label: "Pastebin"},
}

// CategoryKeys returns the known category flag keys in display order.
func CategoryKeys() []string {
	keys := make([]string, len(categoryLabels))
	for i, e := range categoryLabels {
		keys[i] = e.key
	}
	return keys
}

// CategoryLabel returns the label for a category flag key.
func CategoryLabel(key string) (string, bool) {
	for _, e := range categoryLabels {
		if e.key == key {
			return e.label, true
		}
	}
	return "", false
}

// ExtractCategories returns the labels of every set category flag, in
// display order. Set flags with no known label are omitted.
func ExtractCategories(flags model.Flags) []string {
	labels := make([]string, 0, len(categoryLabels))
	for _, e := range categoryLabels {
		if flags[e.key] {
			labels = append(labels, e.label)
		}
	}
	return labels
}

// UnmappedCategories returns the set category flags that have no label,
// sorted by key. ExtractCategories drops these silently.
func UnmappedCategories(flags model.Flags) []string {
	return unmapped(flags, categoryLabels)
}

func unmapped(flags model.Flags, table []labelEntry) []string {
	known := make(map[string]struct{}, len(table))
	for _, e := range table {
		known[e.key] = struct{}{}
	}
	var keys []string
	for k, v := range flags {
		if !v {
			continue
		}
		if _, ok := known[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}
