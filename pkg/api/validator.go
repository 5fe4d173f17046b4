package api

import "errors"

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p PlacePayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.X < 0 || p.Y < 0 {
		return errors.New("coordinates cannot be negative")
	}
	return nil
}

func (p BenchPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	if p.SlotIndex < 0 {
		return errors.New("slotIndex cannot be negative")
	}
	return nil
}

func (p SellPayload) Validate() error {
	if p.EntityID == "" {
		return errors.New("entityId is required")
	}
	return nil
}

func (p BuyPayload) Validate() error {
	if p.TemplateID == "" {
		return errors.New("templateId is required")
	}
	return nil
}
