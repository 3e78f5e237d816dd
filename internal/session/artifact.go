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
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/llmspell/llmspell/internal/errs"
	"github.com/llmspell/llmspell/internal/storage"
	"github.com/llmspell/llmspell/internal/types"
)

// CompressionThreshold is the minimum artifact size, in bytes, at
// which ArtifactStore transparently zstd-compresses the payload
// before persisting it.
const CompressionThreshold = 1024

const (
	artifactMetaNamespace = "artifact_meta"
	artifactBlobNamespace = "artifact_blob"
)

// ArtifactStore persists session artifacts with content-hash
// deduplication at the blob level: saving identical bytes twice within
// a session stores the compressed payload only once, but each Put
// still allocates its own artifact id (distinct Sequence, shared
// ContentHash), since an artifact's identity is the save event, not
// its bytes.
type ArtifactStore struct {
	kv      storage.OrderedKV
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewArtifactStore builds an ArtifactStore over kv.
func NewArtifactStore(kv storage.OrderedKV) (*ArtifactStore, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "create zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "create zstd decoder")
	}
	return &ArtifactStore{kv: kv, encoder: enc, decoder: dec}, nil
}

// Put stores content under sessionID, returning the artifact's
// metadata. Every call allocates a fresh Sequence, so storing the same
// bytes twice yields two distinct artifact ids sharing ContentHash;
// the compressed blob itself is stored once per unique hash and shared
// across those ids.
func (s *ArtifactStore) Put(ctx context.Context, sessionID, name, mimeType string, content []byte, tags map[string]string) (types.ArtifactMetadata, error) {
	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	compressed := len(content) >= CompressionThreshold
	if err := s.ensureBlob(ctx, hash, content, compressed); err != nil {
		return types.ArtifactMetadata{}, err
	}

	seq, err := s.nextSequence(ctx, sessionID)
	if err != nil {
		return types.ArtifactMetadata{}, err
	}

	meta := types.ArtifactMetadata{
		ID:          types.ArtifactID{SessionID: sessionID, ContentHash: hash, Sequence: seq},
		Name:        name,
		MimeType:    mimeType,
		ContentHash: hash,
		Size:        int64(len(content)),
		Compressed:  compressed,
		Tags:        tags,
		CreatedAt:   time.Now(),
	}

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return types.ArtifactMetadata{}, errs.Wrap(errs.Internal, err, "encode artifact metadata")
	}
	if err := s.kv.Put(ctx, artifactMetaNamespace, metaKey(sessionID, meta.ID.Sequence), metaBytes); err != nil {
		return types.ArtifactMetadata{}, errs.Wrap(errs.Internal, err, "store artifact metadata")
	}
	return meta, nil
}

// ensureBlob stores content's (optionally compressed) payload under
// hash if no blob is already stored there, so identical content saved
// under different artifact ids shares one copy on disk.
func (s *ArtifactStore) ensureBlob(ctx context.Context, hash string, content []byte, compressed bool) error {
	if _, err := s.kv.Get(ctx, artifactBlobNamespace, hash); err == nil {
		return nil
	} else if errs.KindOf(err) != errs.NotFound {
		return errs.Wrap(errs.Internal, err, "check artifact blob")
	}

	payload := content
	if compressed {
		payload = s.encoder.EncodeAll(content, nil)
	}
	if err := s.kv.Put(ctx, artifactBlobNamespace, hash, payload); err != nil {
		return errs.Wrap(errs.Internal, err, "store artifact blob")
	}
	return nil
}

// Get retrieves an artifact's decompressed content and metadata.
func (s *ArtifactStore) Get(ctx context.Context, id types.ArtifactID) ([]byte, types.ArtifactMetadata, error) {
	metaBytes, err := s.kv.Get(ctx, artifactMetaNamespace, metaKey(id.SessionID, id.Sequence))
	if err != nil {
		return nil, types.ArtifactMetadata{}, errs.Wrap(errs.KindOf(err), err, "get artifact metadata")
	}
	var meta types.ArtifactMetadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, types.ArtifactMetadata{}, errs.Wrap(errs.Internal, err, "decode artifact metadata")
	}
	payload, err := s.kv.Get(ctx, artifactBlobNamespace, meta.ContentHash)
	if err != nil {
		return nil, types.ArtifactMetadata{}, errs.Wrap(errs.KindOf(err), err, "get artifact blob")
	}
	if meta.Compressed {
		payload, err = s.decoder.DecodeAll(payload, nil)
		if err != nil {
			return nil, types.ArtifactMetadata{}, errs.Wrap(errs.Internal, err, "decompress artifact")
		}
	}
	return payload, meta, nil
}

// List returns every artifact's metadata for sessionID, in creation order.
func (s *ArtifactStore) List(ctx context.Context, sessionID string) ([]types.ArtifactMetadata, error) {
	entries, err := s.kv.Range(ctx, artifactMetaNamespace, metaKeyPrefix(sessionID), metaKeyPrefixEnd(sessionID), 0)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "list artifacts for session %s", sessionID)
	}
	out := make([]types.ArtifactMetadata, 0, len(entries))
	for _, e := range entries {
		var meta types.ArtifactMetadata
		if err := json.Unmarshal(e.Value, &meta); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "decode artifact metadata")
		}
		out = append(out, meta)
	}
	// Keys sort lexicographically ("10" before "2"), so order by Sequence.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Sequence < out[j].ID.Sequence })
	return out, nil
}

func (s *ArtifactStore) nextSequence(ctx context.Context, sessionID string) (int64, error) {
	entries, err := s.kv.Range(ctx, artifactMetaNamespace, metaKeyPrefix(sessionID), metaKeyPrefixEnd(sessionID), 0)
	if err != nil {
		return 0, errs.Wrap(errs.Internal, err, "compute next artifact sequence")
	}
	return int64(len(entries)) + 1, nil
}

func metaKeyPrefix(sessionID string) string { return "m:" + sessionID + ":" }
func metaKeyPrefixEnd(sessionID string) string {
	return "m:" + sessionID + ";" // ';' sorts just after ':' in ASCII
}
func metaKey(sessionID string, seq int64) string {
	return metaKeyPrefix(sessionID) + strconv.FormatInt(seq, 10)
}
