// IPFS Kit Router - Content-Aware Routing for Distributed Storage Backends
// Copyright 2026 Endomorphosis
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/endomorphosis/ipfs-kit-py

package routing

import "testing"

func TestClassifyContent(t *testing.T) {
	tests := []struct {
		mime string
		want ContentCategory
	}{
		{"image/png", CategoryImage},
		{"image/jpeg", CategoryImage},
		{"video/mp4", CategoryVideo},
		{"audio/mpeg", CategoryAudio},
		{"text/plain", CategoryText},
		{"text/html", CategoryText},
		{"model/pytorch", CategoryModel},
		{"application/pdf", CategoryDocument},
		{"application/msword", CategoryDocument},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", CategoryDocument},
		{"application/json", CategoryText},
		{"application/xml", CategoryText},
		{"application/x-yaml", CategoryText},
		{"application/x-tensorflow-model", CategoryModel},
		{"application/x-pytorch", CategoryModel},
		{"application/onnx", CategoryModel},
		{"application/csv", CategoryDataset},
		{"application/x-parquet", CategoryDataset},
		{"application/octet-stream", CategoryApplication},
		{"application/zip", CategoryApplication},
		{"font/woff2", CategoryUnknown},
		{"nonsense", CategoryUnknown},
		{"", CategoryUnknown},
		{"   ", CategoryUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyContent(tt.mime); got != tt.want {
			t.Errorf("ClassifyContent(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestClassifyContentCaseInsensitive(t *testing.T) {
	if got := ClassifyContent("IMAGE/PNG"); got != CategoryImage {
		t.Errorf("expected image for IMAGE/PNG, got %q", got)
	}
	if got := ClassifyContent("Application/PDF"); got != CategoryDocument {
		t.Errorf("expected document for Application/PDF, got %q", got)
	}
}
