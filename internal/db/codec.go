package db

import (
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/dori/leadboard/internal/model"
)

// EncodeDocument serializes a document the way it is stored
func EncodeDocument(doc model.Document) ([]byte, error) {
	data, err := sonic.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a stored document body
func DecodeDocument(data []byte) (model.Document, error) {
	var doc model.Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return model.Document{}, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}
