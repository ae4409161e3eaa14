package models

import jsoniter "github.com/json-iterator/go"

// EncodeMetadata renders src as the JSON string attached to rooms and participants.
func EncodeMetadata(src any) string {
	raw, _ := jsoniter.Marshal(src)
	return string(raw)
}
