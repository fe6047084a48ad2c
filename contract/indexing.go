package contract

// maintaining index keys for listing data the plain KV cannot iterate

import (
	"bytes"
	"fmt"
	"strconv"

	"okinoko_gov/contract/dao"
	"okinoko_gov/sdk"
)

const (
	// maxChunkSize splits an index so a single value never grows without bound.
	maxChunkSize = 2500
	// idxOrgProposalsOpen holds the open proposal ids of one organization. + org id
	idxOrgProposalsOpen = "org:props:open:"
)

const idLen = len(dao.ProposalID{})

func openProposalsIndex(org sdk.AccountID) string {
	return idxOrgProposalsOpen + org.String()
}

func chunkCounterKey(base string) string {
	return base + ":chunks"
}

func chunkKey(base string, chunk uint64) string {
	return base + ":" + strconv.FormatUint(chunk, 10)
}

// readChunk splits a chunk into ids. Chunks are plain concatenations of 32 byte ids.
func readChunk(st sdk.State, key string) ([]dao.ProposalID, error) {
	raw, ok, err := st.Get(key)
	if err != nil || !ok {
		return nil, err
	}
	if len(raw)%idLen != 0 {
		return nil, fmt.Errorf("index chunk %s: length %d is not a multiple of %d", key, len(raw), idLen)
	}
	ids := make([]dao.ProposalID, len(raw)/idLen)
	for i := range ids {
		copy(ids[i][:], raw[i*idLen:])
	}
	return ids, nil
}

func writeChunk(st sdk.State, key string, ids []dao.ProposalID) error {
	var buf bytes.Buffer
	buf.Grow(len(ids) * idLen)
	for _, id := range ids {
		buf.Write(id[:])
	}
	return st.Set(key, buf.Bytes())
}

// addToIndex appends id to the first chunk with room. Ids already present are left alone.
func addToIndex(st sdk.State, base string, id dao.ProposalID) error {
	chunks, err := sdk.GetCount(st, chunkCounterKey(base))
	if err != nil {
		return err
	}
	for i := uint64(0); i < chunks; i++ {
		key := chunkKey(base, i)
		ids, err := readChunk(st, key)
		if err != nil {
			return err
		}
		for _, e := range ids {
			if e == id {
				return nil
			}
		}
		if len(ids) < maxChunkSize {
			return writeChunk(st, key, append(ids, id))
		}
	}
	if err := writeChunk(st, chunkKey(base, chunks), []dao.ProposalID{id}); err != nil {
		return err
	}
	return sdk.SetCount(st, chunkCounterKey(base), chunks+1)
}

// removeFromIndex drops id from whichever chunk holds it. Emptied chunks stay and get refilled.
func removeFromIndex(st sdk.State, base string, id dao.ProposalID) error {
	chunks, err := sdk.GetCount(st, chunkCounterKey(base))
	if err != nil {
		return err
	}
	for i := uint64(0); i < chunks; i++ {
		key := chunkKey(base, i)
		ids, err := readChunk(st, key)
		if err != nil {
			return err
		}
		for j, e := range ids {
			if e == id {
				return writeChunk(st, key, append(ids[:j], ids[j+1:]...))
			}
		}
	}
	return nil
}

// listIndex collects the ids of all chunks in order.
func listIndex(st sdk.State, base string) ([]dao.ProposalID, error) {
	chunks, err := sdk.GetCount(st, chunkCounterKey(base))
	if err != nil {
		return nil, err
	}
	all := []dao.ProposalID{}
	for i := uint64(0); i < chunks; i++ {
		ids, err := readChunk(st, chunkKey(base, i))
		if err != nil {
			return nil, err
		}
		all = append(all, ids...)
	}
	return all, nil
}
