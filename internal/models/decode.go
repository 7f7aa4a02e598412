package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Metadata arrives as an open key/value mapping. Known keys are read when
// they carry the expected JSON type and silently ignored otherwise, so a
// mistyped optional field only removes its signal.

// UnmarshalJSON decodes metadata leniently. Anything other than an object
// decodes to the zero value.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*m = Metadata{}
		return nil
	}
	*m = metadataFrom(fields)
	return nil
}

// UnmarshalJSON decodes a batch item from its flat form. Only a non-object
// item is an error; mistyped fields decode to their zero value, so an item
// with a bad channel still reports as an invalid channel.
func (b *BatchItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var id ItemID
	if raw, ok := fields["id"]; ok && id.UnmarshalJSON(raw) != nil {
		id = ""
	}
	*b = BatchItem{
		ID:       id,
		Channel:  Channel(stringField(fields, "channel")),
		Content:  stringField(fields, "content"),
		Metadata: metadataFrom(fields),
	}
	return nil
}

// UnmarshalJSON reads the two measurements. Numeric strings are accepted;
// any other type leaves the measurement unset.
func (d *DeepfakeIndicators) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*d = DeepfakeIndicators{
		BlinkRatePerMin: numberField(fields, "blinkRatePerMin"),
		LipSyncScore:    numberField(fields, "lipSyncScore"),
	}
	return nil
}

func metadataFrom(fields map[string]json.RawMessage) Metadata {
	md := Metadata{
		TextMetadata: TextMetadata{
			Sender:  stringField(fields, "sender"),
			Subject: stringField(fields, "subject"),
			Source:  stringField(fields, "source"),
		},
		VoiceMetadata: VoiceMetadata{
			CallerID: stringField(fields, "callerId"),
			// only a literal true counts
			SpoofedCallerID: isTrue(fields["spoofedCallerId"]),
		},
		VideoMetadata: VideoMetadata{
			Platform: stringField(fields, "platform"),
		},
	}
	if raw, ok := fields["deepfakeIndicators"]; ok && !isNull(raw) {
		var ind DeepfakeIndicators
		if json.Unmarshal(raw, &ind) == nil {
			md.DeepfakeIndicators = &ind
		}
	}
	return md
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if raw, ok := fields[key]; ok && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return ""
}

func numberField(fields map[string]json.RawMessage, key string) *float64 {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return &f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func isTrue(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("true"))
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
