package utils

import (
	"github.com/lithammer/shortuuid/v3"
)

const (
	ConnectionPrefix = "PC-"
	TrackPrefix      = "TR-"
	SourcePrefix     = "VS-"
	ChannelPrefix    = "DC-"
	ReportPrefix     = "ST-"
)

func NewGuid(prefix string) string {
	return prefix + shortuuid.New()
}
