// ABOUTME: Parser for the osu! chart text format
// ABOUTME: Section state machine over header key/values, events, timing points and hit objects
package chart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
)

const typeHold = 128

const minHitObjectFields = 6

var (
	// ErrTooFewFields means a hit object line has fewer than six fields
	ErrTooFewFields = errors.New("hit object needs at least 6 fields")

	// ErrEndBeforeStart means a held event ends before it starts
	ErrEndBeforeStart = errors.New("held event ends before it starts")
)

// ParseError locates a malformed line
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type section int

const (
	secNone section = iota
	secGeneral
	secEditor
	secMetadata
	secDifficulty
	secEvents
	secTimingPoints
	secColours
	secHitObjects
	secUnknown
)

var sections = map[string]section{
	"General":      secGeneral,
	"Editor":       secEditor,
	"Metadata":     secMetadata,
	"Difficulty":   secDifficulty,
	"Events":       secEvents,
	"TimingPoints": secTimingPoints,
	"Colours":      secColours,
	"HitObjects":   secHitObjects,
}

// Load parses the chart at path
func Load(path string) (*Chart, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chart: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chart %s: %w", path, err)
	}
	return c, nil
}

// Parse reads a chart. A malformed hit object line fails the whole parse.
func Parse(r io.Reader) (*Chart, error) {
	c := &Chart{}
	sec := secNone

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := line[1 : len(line)-1]
			s, ok := sections[name]
			if !ok {
				s = secUnknown
			}
			sec = s
			continue
		}

		var err error
		switch sec {
		case secNone:
			c.parseVersion(line)
		case secGeneral, secMetadata, secDifficulty:
			err = c.parseHeader(line)
		case secEvents:
			c.parseEvent(line)
		case secTimingPoints:
			err = c.parseTimingPoint(line)
		case secHitObjects:
			err = c.parseHitObject(line)
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chart: %w", err)
	}

	c.keys = DefaultKeys
	if k := int(c.Metadata.CircleSize); k > 0 {
		c.keys = k
	}

	return c, nil
}

func (c *Chart) parseVersion(line string) {
	const prefix = "osu file format v"
	if strings.HasPrefix(line, prefix) {
		if v, err := strconv.Atoi(strings.TrimSpace(line[len(prefix):])); err == nil {
			c.FormatVersion = v
		}
	}
}

// parseHeader handles "Key: value" lines
func (c *Chart) parseHeader(line string) error {
	key, value, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	m := &c.Metadata
	switch key {
	case "AudioFilename":
		m.AudioFilename = value
	case "Mode":
		mode, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid Mode: %w", err)
		}
		m.Mode = mode
	case "Title":
		m.Title = value
	case "Artist":
		m.Artist = value
	case "Creator":
		m.Creator = value
	case "Version":
		m.Version = value
	case "HPDrainRate":
		return parseFloat(key, value, &m.HPDrainRate)
	case "CircleSize":
		return parseFloat(key, value, &m.CircleSize)
	case "OverallDifficulty":
		return parseFloat(key, value, &m.OverallDifficulty)
	case "ApproachRate":
		return parseFloat(key, value, &m.ApproachRate)
	case "SliderTickRate":
		return parseFloat(key, value, &m.SliderTickRate)
	}
	return nil
}

func parseFloat(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

// parseEvent picks the background image out of the [Events] section
func (c *Chart) parseEvent(line string) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 || c.Metadata.Background != "" {
		return
	}
	kind := strings.TrimSpace(fields[0])
	if kind != "0" && kind != "Background" {
		return
	}
	c.Metadata.Background = strings.Trim(strings.TrimSpace(fields[2]), `"`)
}

// parseTimingPoint reads time,beatLength[,meter,sampleSet,sampleIndex,volume,uninherited,effects]
func (c *Chart) parseTimingPoint(line string) error {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return errors.New("timing point needs at least 2 fields")
	}

	t, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return fmt.Errorf("invalid timing point time: %w", err)
	}
	beat, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return fmt.Errorf("invalid beat length: %w", err)
	}

	tp := TimingPoint{TimeMs: int64(math.Floor(t)), BeatLength: beat, Meter: 4, Uninherited: true}
	if len(fields) > 2 {
		if meter, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil && meter > 0 {
			tp.Meter = meter
		}
	}
	if len(fields) > 6 {
		tp.Uninherited = strings.TrimSpace(fields[6]) == "1"
	}

	c.TimingPoints = append(c.TimingPoints, tp)
	return nil
}

// parseHitObject reads x,y,time,type,hitSound,objectParams[:hitSample]
func (c *Chart) parseHitObject(line string) error {
	fields := strings.Split(line, ",")
	if len(fields) < minHitObjectFields {
		return ErrTooFewFields
	}

	var nums [5]uint64
	names := [5]string{"x", "y", "time", "type", "hitsound"}
	for i := range nums {
		v, err := strconv.ParseUint(strings.TrimSpace(fields[i]), 10, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", names[i], err)
		}
		nums[i] = v
	}

	ev := HitEvent{
		Kind:   Instant,
		X:      uint32(nums[0]),
		Y:      uint32(nums[1]),
		TimeMs: int64(nums[2]),
	}

	params := strings.Join(fields[5:], ",")
	if nums[3]&typeHold != 0 {
		if end, _, ok := strings.Cut(params, ":"); ok {
			endTime, err := strconv.ParseUint(strings.TrimSpace(end), 10, 32)
			if err != nil {
				return fmt.Errorf("invalid end time: %w", err)
			}
			if int64(endTime) < ev.TimeMs {
				return ErrEndBeforeStart
			}
			ev.Kind = Held
			ev.EndTimeMs = int64(endTime)
		} else {
			log.Printf("Hold flag without end time at %dms, treating as instant", ev.TimeMs)
		}
	}

	c.events = append(c.events, ev)
	return nil
}
