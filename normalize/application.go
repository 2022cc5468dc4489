package normalize

import (
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/meikuraledutech/timeline/fieldmap"
	"github.com/tidwall/gjson"
)

const applicationEntityPrefix = "tez_"

// configEntry is one raw key/value pair of otherinfo.config.
type configEntry struct {
	key   string
	value string
}

// ApplicationFields is the field table of a TEZ_APPLICATION entity.
func ApplicationFields() *fieldmap.Spec {
	return fieldmap.MustSpec(
		fieldmap.FromPath("id", "entity"),
		fieldmap.Custom("appId", applicationID),
		fieldmap.FromPath("entityType", "entitytype"),
		fieldmap.FromPath("startedTime", "starttime"),
		fieldmap.FromPath("domain", "domain"),
		fieldmap.FromPath("dags", "relatedentities."+timeline.KindDag.TimelineEntityType()),
		fieldmap.Custom("configs", configEntries),
	)
}

// applicationID strips the tez_ prefix off the entity id. An entity id
// without the prefix is not guessed at.
func applicationID(raw gjson.Result) (any, error) {
	entity := raw.Get("entity").String()
	if entity == "" {
		return nil, nil
	}
	appID, ok := strings.CutPrefix(entity, applicationEntityPrefix)
	if !ok || appID == "" {
		return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(
			"application entity " + entity + " does not carry the " + applicationEntityPrefix + " prefix")
	}
	return strings.Clone(appID), nil
}

// configEntries reads otherinfo.config, sorted by key. Non-string values
// keep their raw JSON text.
func configEntries(raw gjson.Result) (any, error) {
	config := raw.Get("otherinfo.config")
	if !config.IsObject() {
		return nil, nil
	}
	return objectEntries(config), nil
}

// NewApplicationNormalizer normalizes Tez applications and explodes their
// configuration into Config records.
func NewApplicationNormalizer() *EntityNormalizer {
	return newEntityNormalizer(timeline.KindApplication, ApplicationFields(), func(rec fieldmap.Record, counters *CounterSet) (*timeline.Batch, error) {
		app := timeline.Application{
			ID:            rec.String("id"),
			AppID:         rec.String("appId"),
			EntityType:    rec.String("entityType"),
			StartedTime:   rec.Int64("startedTime"),
			Domain:        rec.String("domain"),
			Dags:          rec.Strings("dags"),
			Configs:       []string{},
			CounterGroups: counters.GroupIDs,
		}
		if app.Dags == nil {
			app.Dags = []string{}
		}

		entries, _ := rec["configs"].([]configEntry)
		configs := make([]timeline.Config, 0, len(entries))
		for _, e := range entries {
			c := timeline.Config{
				ID:            timeline.ConfigID(app.AppID, e.key),
				Key:           e.key,
				Value:         e.value,
				ApplicationID: app.ID,
			}
			configs = append(configs, c)
			app.Configs = append(app.Configs, c.ID)
		}

		return &timeline.Batch{
			Applications: []timeline.Application{app},
			Configs:      configs,
		}, nil
	})
}
