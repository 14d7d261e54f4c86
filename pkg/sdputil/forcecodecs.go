package sdputil

import (
	"strconv"
	"strings"

	"github.com/pion/sdp/v3"
	"github.com/pkg/errors"
)

// Param is one extra format parameter forced onto the kept codec's fmtp
// line. Order is preserved when appending.
type Param struct {
	Key   string
	Value string
}

// CodecFilter restricts one media kind to a single codec. An empty
// CodecName leaves that kind unmodified.
type CodecFilter struct {
	CodecName string
	Params    []Param
}

// ParseParams parses a "key=value;key=value" parameter string.
func ParseParams(s string) []Param {
	var params []Param
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		params = append(params, Param{Key: kv[0], Value: kv[1]})
	}
	return params
}

// ForceCodecs removes every negotiable codec except the filtered one from
// each media section of the given kind and merges the filter's extra
// parameters into the kept codec's format parameters. The transform is
// syntactic and idempotent. A section whose codec list does not contain the
// named codec is left untouched.
func ForceCodecs(message string, audio CodecFilter, video CodecFilter) (string, error) {
	parsed := &sdp.SessionDescription{}
	if err := parsed.Unmarshal([]byte(message)); err != nil {
		return "", errors.Wrap(err, "could not parse session description")
	}

	for _, md := range parsed.MediaDescriptions {
		var filter CodecFilter
		switch md.MediaName.Media {
		case "audio":
			filter = audio
		case "video":
			filter = video
		default:
			continue
		}
		if filter.CodecName == "" {
			continue
		}
		forceCodec(md, filter)
	}

	out, err := parsed.Marshal()
	if err != nil {
		return "", errors.Wrap(err, "could not serialize session description")
	}
	return string(out), nil
}

func forceCodec(md *sdp.MediaDescription, filter CodecFilter) {
	kept := make(map[string]bool)
	for _, attr := range md.Attributes {
		if attr.Key != "rtpmap" {
			continue
		}
		payload, rest, ok := splitPayload(attr.Value)
		if !ok {
			continue
		}
		name := rest
		if idx := strings.IndexByte(name, '/'); idx >= 0 {
			name = name[:idx]
		}
		if strings.EqualFold(name, filter.CodecName) {
			kept[payload] = true
		}
	}
	if len(kept) == 0 {
		return
	}

	formats := md.MediaName.Formats[:0]
	for _, f := range md.MediaName.Formats {
		if kept[f] {
			formats = append(formats, f)
		}
	}
	md.MediaName.Formats = formats

	attrs := md.Attributes[:0]
	for _, attr := range md.Attributes {
		switch attr.Key {
		case "rtpmap", "rtcp-fb":
			if payload, _, ok := splitPayload(attr.Value); ok && !kept[payload] {
				continue
			}
		case "fmtp":
			payload, rest, ok := splitPayload(attr.Value)
			if ok && !kept[payload] {
				continue
			}
			if ok && len(filter.Params) > 0 {
				attr.Value = payload + " " + mergeParams(rest, filter.Params)
			}
		}
		attrs = append(attrs, attr)
	}
	md.Attributes = attrs

	if len(filter.Params) == 0 {
		return
	}
	// kept payloads with no fmtp line get one carrying the extra params
	withFmtp := make(map[string]bool)
	for _, attr := range md.Attributes {
		if attr.Key != "fmtp" {
			continue
		}
		if payload, _, ok := splitPayload(attr.Value); ok {
			withFmtp[payload] = true
		}
	}
	for _, f := range md.MediaName.Formats {
		if withFmtp[f] {
			continue
		}
		md.Attributes = append(md.Attributes, sdp.Attribute{
			Key:   "fmtp",
			Value: f + " " + mergeParams("", filter.Params),
		})
	}
}

// splitPayload splits payload-prefixed attribute values ("96 opus/48000/2",
// "96 nack", "96 minptime=10") into the numeric payload type and the rest.
// Values with a non-numeric first token (e.g. "* nack") report ok == false.
func splitPayload(value string) (payload string, rest string, ok bool) {
	fields := strings.SplitN(value, " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return "", "", false
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return "", "", false
	}
	payload = fields[0]
	if len(fields) > 1 {
		rest = fields[1]
	}
	return payload, rest, true
}

// mergeParams merges extras into an existing "k=v;k=v" parameter string.
// Same-name keys are overwritten in place, new keys appended in order.
func mergeParams(existing string, extras []Param) string {
	params := ParseParams(existing)
	for _, extra := range extras {
		replaced := false
		for i := range params {
			if params[i].Key == extra.Key {
				params[i].Value = extra.Value
				replaced = true
				break
			}
		}
		if !replaced {
			params = append(params, extra)
		}
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Key+"="+p.Value)
	}
	return strings.Join(parts, ";")
}
