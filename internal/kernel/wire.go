// Copyright 2026 The LLMSpell Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kernel implements the five-channel message server llmspell
// clients connect to: shell (execute requests), iopub (broadcast
// output), stdin (input requests), control (shutdown/interrupt/debug),
// and heartbeat (liveness). Every shell/stdin/control frame is
// HMAC-signed the way a Jupyter kernel's wire protocol signs its
// four-part messages.
package kernel

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/types"
)

// wireFrame is the four-part message as it appears on the wire, before
// the header/parent_header/metadata/content parts are individually
// unmarshaled. Signature covers the concatenation of the four raw
// JSON parts, matching the Jupyter wire protocol's HMAC scope.
type wireFrame struct {
	Signature    string          `json:"signature"`
	Header       json.RawMessage `json:"header"`
	ParentHeader json.RawMessage `json:"parent_header"`
	Metadata     json.RawMessage `json:"metadata"`
	Content      json.RawMessage `json:"content"`
}

// WireProtocol signs and verifies frames with a shared HMAC-SHA256 key.
type WireProtocol struct {
	key []byte
}

// NewWireProtocol builds a WireProtocol from a connection descriptor's
// hex-encoded key. An empty key disables signing, matching the
// Jupyter convention where signature_scheme is left unset for
// unauthenticated local testing.
func NewWireProtocol(key string) *WireProtocol {
	return &WireProtocol{key: []byte(key)}
}

// calculateHMAC signs the concatenation of parts, in order, and
// returns the hex-encoded digest. With an empty key it returns "",
// the Jupyter convention for an unsigned session.
func (w *WireProtocol) calculateHMAC(parts ...[]byte) string {
	if len(w.key) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, w.key)
	for _, p := range parts {
		mac.Write(p)
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// verifyHMAC reports whether sig matches the signature computed over
// parts, using a constant-time comparison.
func (w *WireProtocol) verifyHMAC(sig string, parts ...[]byte) bool {
	expected := w.calculateHMAC(parts...)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// Encode signs and serializes msg into a single wire frame.
func (w *WireProtocol) Encode(msg *types.Message) ([]byte, error) {
	header, err := json.Marshal(msg.Header)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "encode message header")
	}
	parent, err := json.Marshal(msg.ParentHeader)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "encode parent header")
	}
	metadata, err := json.Marshal(msg.Metadata)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "encode metadata")
	}
	content, err := json.Marshal(msg.Content)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "encode content")
	}

	frame := wireFrame{
		Signature:    w.calculateHMAC(header, parent, metadata, content),
		Header:       header,
		ParentHeader: parent,
		Metadata:     metadata,
		Content:      content,
	}
	out, err := json.Marshal(frame)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "encode wire frame")
	}
	return out, nil
}

// Decode verifies and deserializes a wire frame into a Message.
// Channel is left for the caller to set, since it isn't carried on
// the wire — it's implied by which socket the frame arrived on.
func (w *WireProtocol) Decode(raw []byte) (*types.Message, error) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, errs.Wrap(errs.Validation, err, "decode wire frame")
	}

	if !w.verifyHMAC(frame.Signature, frame.Header, frame.ParentHeader, frame.Metadata, frame.Content) {
		return nil, errs.New(errs.Unauthorized, "message signature verification failed")
	}

	msg := &types.Message{}
	if err := json.Unmarshal(frame.Header, &msg.Header); err != nil {
		return nil, errs.Wrap(errs.Validation, err, "decode message header")
	}
	if len(frame.ParentHeader) > 0 {
		if err := json.Unmarshal(frame.ParentHeader, &msg.ParentHeader); err != nil {
			return nil, errs.Wrap(errs.Validation, err, "decode parent header")
		}
	}
	if len(frame.Metadata) > 0 {
		if err := json.Unmarshal(frame.Metadata, &msg.Metadata); err != nil {
			return nil, errs.Wrap(errs.Validation, err, "decode metadata")
		}
	}
	if len(frame.Content) > 0 {
		if err := json.Unmarshal(frame.Content, &msg.Content); err != nil {
			return nil, errs.Wrap(errs.Validation, err, "decode content")
		}
	}
	return msg, nil
}

// decodeHeaderUnsafe best-effort parses a frame's header without
// verifying its signature, so a caller rejecting an Unauthorized frame
// can still stamp a parent_header onto its error reply. Returns the
// zero header if the frame isn't even well-formed JSON.
func (w *WireProtocol) decodeHeaderUnsafe(raw []byte) types.MessageHeader {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return types.MessageHeader{}
	}
	var hdr types.MessageHeader
	_ = json.Unmarshal(frame.Header, &hdr)
	return hdr
}
