package config

import (
	"strconv"
	"time"

	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/layout"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "LINEAGEFLOW_"

// Environment variables, without [EnvPrefix].
const (
	EnvMaxNodes          = "MAX_NODES"
	EnvHorizontalSpacing = "HORIZONTAL_SPACING"
	EnvVerticalSpacing   = "VERTICAL_SPACING"
	EnvNodeHeight        = "NODE_HEIGHT"
	EnvAnchor            = "ANCHOR"
	EnvReverseCycles     = "REVERSE_CYCLES"
	EnvLineageURL        = "LINEAGE_URL"
	EnvLineageTimeout    = "LINEAGE_TIMEOUT"
	EnvLineageToken      = "LINEAGE_TOKEN"
	EnvCacheBackend      = "CACHE_BACKEND"
	EnvCacheDir          = "CACHE_DIR"
	EnvCacheSize         = "CACHE_SIZE"
	EnvRedisAddr         = "REDIS_ADDR"
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabase     = "MONGO_DATABASE"
	EnvGraphTTL          = "GRAPH_TTL"
	EnvServerAddr        = "SERVER_ADDR"
)

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return v, ok && v != ""
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{EnvLineageURL, &c.Lineage.BaseURL},
		{EnvLineageToken, &c.Lineage.Token},
		{EnvCacheBackend, &c.Cache.Backend},
		{EnvCacheDir, &c.Cache.Dir},
		{EnvRedisAddr, &c.Cache.RedisAddr},
		{EnvMongoURI, &c.Cache.MongoURI},
		{EnvMongoDatabase, &c.Cache.MongoDatabase},
		{EnvServerAddr, &c.Server.Addr},
	}
	for _, s := range strs {
		if v, ok := get(s.name); ok {
			*s.dst = v
		}
	}
	if v, ok := get(EnvAnchor); ok {
		c.Layout.Anchor = layout.Anchor(v)
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{EnvHorizontalSpacing, &c.Layout.HorizontalSpacing},
		{EnvVerticalSpacing, &c.Layout.VerticalSpacing},
		{EnvNodeHeight, &c.Layout.NodeHeight},
	}
	for _, f := range floats {
		v, ok := get(f.name)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return invalidEnv(f.name, v, err)
		}
		*f.dst = n
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvMaxNodes, &c.MaxNodes},
		{EnvCacheSize, &c.Cache.Size},
	}
	for _, i := range ints {
		v, ok := get(i.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return invalidEnv(i.name, v, err)
		}
		*i.dst = n
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{EnvLineageTimeout, &c.Lineage.Timeout},
		{EnvGraphTTL, &c.Cache.GraphTTL},
	}
	for _, d := range durations {
		v, ok := get(d.name)
		if !ok {
			continue
		}
		n, err := time.ParseDuration(v)
		if err != nil {
			return invalidEnv(d.name, v, err)
		}
		*d.dst = n
	}

	if v, ok := get(EnvReverseCycles); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return invalidEnv(EnvReverseCycles, v, err)
		}
		c.Layout.ReverseCycles = b
	}
	return nil
}

func invalidEnv(name, value string, err error) error {
	return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, name, value)
}
