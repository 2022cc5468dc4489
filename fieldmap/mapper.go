package fieldmap

import (
	"github.com/pingcap/errors"
	"github.com/tidwall/gjson"
)

// Map projects raw onto spec. Only fields named in spec end up in the
// record; a path that does not resolve leaves its field absent. The first
// failing extractor aborts the mapping of raw.
func Map(raw gjson.Result, spec *Spec) (Record, error) {
	rec := make(Record, len(spec.fields))
	for _, f := range spec.fields {
		if f.extract != nil {
			v, err := f.extract(raw)
			if err != nil {
				return nil, errors.Annotatef(err, "field %s", f.name)
			}
			if v != nil {
				rec[f.name] = v
			}
			continue
		}

		if v := f.path.Resolve(raw); v.Exists() && v.Type != gjson.Null {
			rec[f.name] = v
		}
	}
	return rec, nil
}
