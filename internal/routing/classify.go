// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import "strings"

// ClassifyContent maps a MIME type to a coarse content category. Pure
// function, no I/O. Unknown or empty input yields CategoryUnknown.
func ClassifyContent(mimeType string) ContentCategory {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return CategoryUnknown
	}

	primary, subtype, _ := strings.Cut(mimeType, "/")

	switch primary {
	case "image":
		return CategoryImage
	case "video":
		return CategoryVideo
	case "audio":
		return CategoryAudio
	case "text":
		return CategoryText
	case "model":
		return CategoryModel
	case "application":
		return classifyApplicationSubtype(subtype)
	default:
		return CategoryUnknown
	}
}

// classifyApplicationSubtype distinguishes the interesting application/*
// subtypes by substring.
func classifyApplicationSubtype(subtype string) ContentCategory {
	switch {
	case containsAny(subtype, "pdf", "msword", "officedocument", "document", "presentation", "spreadsheet", "epub", "rtf"):
		return CategoryDocument
	case containsAny(subtype, "json", "xml", "yaml", "toml"):
		return CategoryText
	case containsAny(subtype, "tensorflow", "pytorch", "onnx", "safetensors", "gguf"):
		return CategoryModel
	case containsAny(subtype, "csv", "parquet", "arrow", "avro"):
		return CategoryDataset
	default:
		return CategoryApplication
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
