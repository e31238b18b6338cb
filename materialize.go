package osm

import (
	"strconv"
	"time"
)

// setFieldsFromTags fills f from el: the feature id, the declared id and
// metadata fields, every tag matching a declared field, the serialized
// tag blob, and finally the computed attributes, in that order.
//
// Population is best effort. A tag that does not convert to its field's
// declared type leaves a zero value behind, never an error.
func (l *Layer) setFieldsFromTags(f *Feature, el *Element) {
	f.SetFID(el.ID)
	if !el.IsWayID {
		if l.schema.idIdx >= 0 {
			f.SetFieldString(l.schema.idIdx, strconv.FormatInt(el.ID, 10))
		}
	} else if l.schema.wayIDIdx >= 0 {
		f.SetFieldString(l.schema.wayIDIdx, strconv.FormatInt(el.ID, 10))
	}

	if info := el.Info; info != nil {
		if l.hasVersion {
			f.SetFieldInt(l.schema.FindField(fieldVersion), info.Version)
		}
		if l.hasTimestamp {
			if info.Timestamp != "" {
				if t, ok := parseTimestamp(info.Timestamp); ok {
					f.SetFieldTime(l.schema.FindField(fieldTimestamp), t)
				}
			} else if info.Epoch != 0 {
				f.SetFieldTime(l.schema.FindField(fieldTimestamp), time.Unix(info.Epoch, 0).UTC())
			}
		}
		if l.hasUID {
			f.SetFieldInt64(l.schema.FindField(fieldUID), info.UID)
		}
		if l.hasUser {
			f.SetFieldString(l.schema.FindField(fieldUser), info.User)
		}
		if l.hasChangeset {
			f.SetFieldInt64(l.schema.FindField(fieldChangeset), info.Changeset)
		}
	}

	l.blobBuf.Reset()
	wantBlob := l.schema.otherTagsIdx >= 0 || l.schema.allTagsIdx >= 0
	for i := range el.Tags {
		k, v := el.Tags[i].Key, el.Tags[i].Value
		if idx := l.schema.FindField(k); idx >= 0 && idx != l.schema.idIdx {
			f.SetFieldString(idx, v)
			// Keys consumed by a named field stay out of the blob,
			// unless the layer declares all_tags, which keeps them.
			if l.schema.allTagsIdx < 0 {
				continue
			}
		}
		if !wantBlob {
			continue
		}
		if l.inBlob(k) {
			appendBlobTag(&l.blobBuf, l.ds.format, k, v)
		}
		l.noteKey(k)
	}
	if l.blobBuf.Len() > 0 {
		blob := closeBlob(&l.blobBuf, l.ds.format)
		if l.schema.allTagsIdx >= 0 {
			f.SetFieldString(l.schema.allTagsIdx, blob)
		} else {
			f.SetFieldString(l.schema.otherTagsIdx, blob)
		}
	}

	for _, c := range l.computed {
		c.evaluate(f, el.Tags)
	}
}
