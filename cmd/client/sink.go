package main

import (
	"github.com/sirupsen/logrus"

	"tactics-client/internal/domain"
	"tactics-client/internal/engine"
	"tactics-client/pkg/logger"
)

// logSink - безголовая реализация VisualSink.
// Вместо мешей и анимаций пишет команды рендеру в лог: удобно гонять
// ядро против живого сервера без графики и смотреть, что бы оно рисовало.
type logSink struct {
	next engine.VisualHandle
	log  *logrus.Entry
}

func newLogSink() *logSink {
	return &logSink{log: logger.Component("sink")}
}

func (s *logSink) CreateVisual(unit domain.UnitSnapshot, slot domain.SlotAddress) engine.VisualHandle {
	s.next++
	s.log.WithFields(logrus.Fields{
		"handle":   s.next,
		"entity":   unit.ID,
		"template": unit.TemplateID,
		"stars":    unit.Stars,
		"slot":     slot.String(),
	}).Info("create")
	return s.next
}

func (s *logSink) MoveVisual(h engine.VisualHandle, slot domain.SlotAddress, animated bool) {
	s.log.WithFields(logrus.Fields{
		"handle":   h,
		"slot":     slot.String(),
		"animated": animated,
	}).Info("move")
}

func (s *logSink) UpdateVisual(h engine.VisualHandle, stars int, items []string) {
	s.log.WithFields(logrus.Fields{
		"handle": h,
		"stars":  stars,
		"items":  items,
	}).Info("update")
}

func (s *logSink) DestroyVisual(h engine.VisualHandle) {
	s.log.WithField("handle", h).Info("destroy")
}

func (s *logSink) HighlightSlots(slots []domain.SlotAddress) {
	if len(slots) == 0 {
		return
	}
	s.log.WithField("count", len(slots)).Debug("highlight")
}
