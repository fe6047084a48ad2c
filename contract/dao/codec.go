package dao

import (
	"errors"
	"fmt"

	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"

	"okinoko_gov/sdk"
)

// ErrDecode wraps every lexer failure so callers can map it onto their own error.
var ErrDecode = errors.New("decode failed")

// Encode renders v with a fixed field order, the output is stable across runs and doubles
// as the preimage of proposal ids.
func Encode(v tinyjson.Marshaler) ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalTinyJSON(&w)
	return w.BuildBytes()
}

// Decode parses data into v and insists the whole input was consumed.
func Decode(data []byte, v tinyjson.Unmarshaler) error {
	l := jlexer.Lexer{Data: data}
	v.UnmarshalTinyJSON(&l)
	l.Consumed()
	if err := l.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// readObject walks a JSON object and hands each non-null field to fn. Unknown keys must be
// skipped by fn with l.SkipRecursive().
func readObject(l *jlexer.Lexer, fn func(key string)) {
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('{')
	for !l.IsDelim('}') {
		key := l.UnsafeString()
		l.WantColon()
		if l.IsNull() {
			l.Skip()
			l.WantComma()
			continue
		}
		fn(key)
		l.WantComma()
	}
	l.Delim('}')
}

// readArray calls fn once per element.
func readArray(l *jlexer.Lexer, fn func()) {
	if l.IsNull() {
		l.Skip()
		return
	}
	l.Delim('[')
	for !l.IsDelim(']') {
		fn()
		l.WantComma()
	}
	l.Delim(']')
}

// writeAccount stores the raw id bytes as base64. Ids are whatever the host authenticated and
// may not be valid UTF-8, which a JSON string would rewrite.
func writeAccount(w *jwriter.Writer, id sdk.AccountID) {
	w.Base64Bytes([]byte(id))
}

func readAccount(l *jlexer.Lexer) sdk.AccountID {
	return sdk.AccountID(l.Bytes())
}

// -----------------------------------------------------------------------------
// Rule
// -----------------------------------------------------------------------------

func (r RuleParam) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"min_affirmative":`)
	w.Uint32(r.MinAffirmative)
	w.RawString(`,"max_dissenting":`)
	w.Uint32(r.MaxDissenting)
	w.RawString(`,"abstention":`)
	w.Uint32(r.Abstention)
	w.RawByte('}')
}

func (r *RuleParam) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "min_affirmative":
			r.MinAffirmative = l.Uint32()
		case "max_dissenting":
			r.MaxDissenting = l.Uint32()
		case "abstention":
			r.Abstention = l.Uint32()
		default:
			l.SkipRecursive()
		}
	})
}

// -----------------------------------------------------------------------------
// Ledger records
// -----------------------------------------------------------------------------

func (a AssetAccount) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"free":`)
	w.Uint64(uint64(a.Free))
	w.RawString(`,"frozen":`)
	w.Uint64(uint64(a.Frozen))
	w.RawByte('}')
}

func (a *AssetAccount) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "free":
			a.Free = sdk.Balance(l.Uint64())
		case "frozen":
			a.Frozen = sdk.Balance(l.Uint64())
		default:
			l.SkipRecursive()
		}
	})
}

func (a AssetIssuance) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"issuer":`)
	writeAccount(w, a.Issuer)
	w.RawString(`,"supply":`)
	w.Uint64(uint64(a.Supply))
	w.RawByte('}')
}

func (a *AssetIssuance) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "issuer":
			a.Issuer = readAccount(l)
		case "supply":
			a.Supply = sdk.Balance(l.Uint64())
		default:
			l.SkipRecursive()
		}
	})
}

// -----------------------------------------------------------------------------
// Organization
// -----------------------------------------------------------------------------

func (o Organization) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"members":[`)
	for i, m := range o.Members {
		if i > 0 {
			w.RawByte(',')
		}
		writeAccount(w, m)
	}
	w.RawString(`],"rule":`)
	o.Rule.MarshalTinyJSON(w)
	w.RawString(`,"token_id":`)
	w.Uint32(uint32(o.TokenID))
	w.RawByte('}')
}

func (o *Organization) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "members":
			o.Members = o.Members[:0]
			readArray(l, func() {
				o.Members = append(o.Members, readAccount(l))
			})
		case "rule":
			o.Rule.UnmarshalTinyJSON(l)
		case "token_id":
			o.TokenID = sdk.AssetID(l.Uint32())
		default:
			l.SkipRecursive()
		}
	})
}

// -----------------------------------------------------------------------------
// Proposal
// -----------------------------------------------------------------------------

func (v Vote) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"voter":`)
	writeAccount(w, v.Voter)
	w.RawString(`,"amount":`)
	w.Uint64(uint64(v.Amount))
	w.RawString(`,"approve":`)
	w.Bool(v.Approve)
	w.RawByte('}')
}

func (v *Vote) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "voter":
			v.Voter = readAccount(l)
		case "amount":
			v.Amount = sdk.Balance(l.Uint64())
		case "approve":
			v.Approve = l.Bool()
		default:
			l.SkipRecursive()
		}
	})
}

func (d ProposalDetail) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"votes":[`)
	for i, v := range d.Votes {
		if i > 0 {
			w.RawByte(',')
		}
		v.MarshalTinyJSON(w)
	}
	w.RawString(`],"creator":`)
	writeAccount(w, d.Creator)
	w.RawString(`,"expires_at":`)
	w.Uint64(d.ExpiresAt)
	w.RawString(`,"rule":`)
	d.Rule.MarshalTinyJSON(w)
	w.RawByte('}')
}

func (d *ProposalDetail) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "votes":
			d.Votes = d.Votes[:0]
			readArray(l, func() {
				var v Vote
				v.UnmarshalTinyJSON(l)
				d.Votes = append(d.Votes, v)
			})
		case "creator":
			d.Creator = readAccount(l)
		case "expires_at":
			d.ExpiresAt = l.Uint64()
		case "rule":
			d.Rule.UnmarshalTinyJSON(l)
		default:
			l.SkipRecursive()
		}
	})
}

func (p Proposal) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"org":`)
	writeAccount(w, p.Org)
	w.RawString(`,"action":`)
	w.Base64Bytes(p.Action)
	w.RawString(`,"detail":`)
	p.Detail.MarshalTinyJSON(w)
	w.RawByte('}')
}

func (p *Proposal) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "org":
			p.Org = readAccount(l)
		case "action":
			p.Action = l.Bytes()
		case "detail":
			p.Detail.UnmarshalTinyJSON(l)
		default:
			l.SkipRecursive()
		}
	})
}

// -----------------------------------------------------------------------------
// Actions
// -----------------------------------------------------------------------------

func (a Action) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"tag":`)
	w.String(a.Tag)
	w.RawString(`,"payload":`)
	w.Base64Bytes(a.Payload)
	w.RawByte('}')
}

func (a *Action) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "tag":
			a.Tag = l.String()
		case "payload":
			a.Payload = l.Bytes()
		default:
			l.SkipRecursive()
		}
	})
}

func (t TransferArgs) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"to":`)
	writeAccount(w, t.To)
	w.RawString(`,"amount":`)
	w.Uint64(uint64(t.Amount))
	w.RawByte('}')
}

func (t *TransferArgs) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "to":
			t.To = readAccount(l)
		case "amount":
			t.Amount = sdk.Balance(l.Uint64())
		default:
			l.SkipRecursive()
		}
	})
}

func (r RemarkArgs) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"text":`)
	w.String(r.Text)
	w.RawByte('}')
}

func (r *RemarkArgs) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "text":
			r.Text = l.String()
		default:
			l.SkipRecursive()
		}
	})
}

func (m MintArgs) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"amount":`)
	w.Uint64(uint64(m.Amount))
	w.RawByte('}')
}

func (m *MintArgs) UnmarshalTinyJSON(l *jlexer.Lexer) {
	readObject(l, func(key string) {
		switch key {
		case "amount":
			m.Amount = sdk.Balance(l.Uint64())
		default:
			l.SkipRecursive()
		}
	})
}

// -----------------------------------------------------------------------------
// Typed helpers
// -----------------------------------------------------------------------------

// EncodeProposal is the canonical proposal encoding, also fed into MakeProposalID.
func EncodeProposal(p *Proposal) ([]byte, error) {
	return Encode(p)
}

// DecodeProposal parses a stored proposal.
func DecodeProposal(data []byte) (*Proposal, error) {
	var p Proposal
	if err := Decode(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodeAction packs a tag and a typed payload into the opaque bytes a proposal carries.
// Example payload: dao.EncodeAction("vault_transfer", dao.TransferArgs{To: "bob", Amount: 10})
func EncodeAction(tag string, payload tinyjson.Marshaler) ([]byte, error) {
	var raw []byte
	if payload != nil {
		b, err := Encode(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return Encode(Action{Tag: tag, Payload: raw})
}

// DecodeAction unpacks the opaque action bytes of a proposal.
func DecodeAction(data []byte) (Action, error) {
	var a Action
	err := Decode(data, &a)
	return a, err
}
