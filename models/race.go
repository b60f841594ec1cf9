package models

import "time"

// Race is a race configuration created from the Activity wizard.
type Race struct {
	ID                    string                `json:"id"`
	GuildID               string                `json:"guildId,omitempty"`
	Name                  string                `json:"name" validate:"required,max=100"`
	DateTime              time.Time             `json:"dateTime" validate:"required"`
	Slots                 int                   `json:"slots" validate:"required,min=1,max=48"`
	Track                 string                `json:"track" validate:"required"`
	TrackConfig           string                `json:"trackConfig" validate:"required"`
	CarClasses            []string              `json:"carClasses" validate:"required,min=1,dive,required"`
	CreatedBy             string                `json:"createdBy"`
	PracticeAndQualifying PracticeAndQualifying `json:"practiceAndQualifying"`
	Race                  RaceSession           `json:"race"`
	Settings              RaceSettings          `json:"settings"`
	ClassDetails          []ClassDetail         `json:"classDetails" validate:"dive"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

type PracticeAndQualifying struct {
	PracticeDuration   int    `json:"practiceDuration" validate:"min=0"`
	QualifyingDuration int    `json:"qualifyingDuration" validate:"min=0"`
	QualifyingLaps     int    `json:"qualifyingLaps,omitempty" validate:"min=0"`
	QualifyingFormat   string `json:"qualifyingFormat,omitempty" validate:"omitempty,oneof=time laps hotlap"`
}

type RaceSession struct {
	Laps         int    `json:"laps,omitempty" validate:"min=0"`
	Duration     int    `json:"duration,omitempty" validate:"min=0"`
	StartType    string `json:"startType,omitempty" validate:"omitempty,oneof=rolling standing"`
	Weather      string `json:"weather,omitempty"`
	TimeOfDay    string `json:"timeOfDay,omitempty"`
	MandatoryPit bool   `json:"mandatoryPit"`
}

type RaceSettings struct {
	TireWear        string `json:"tireWear,omitempty" validate:"omitempty,oneof=off normal simulation"`
	FuelConsumption string `json:"fuelConsumption,omitempty" validate:"omitempty,oneof=off normal simulation"`
	Damage          string `json:"damage,omitempty" validate:"omitempty,oneof=off cosmetic limited simulation"`
	Collisions      bool   `json:"collisions"`
	Ghosting        bool   `json:"ghosting"`
	DynamicTrack    bool   `json:"dynamicTrack"`
}

type ClassDetail struct {
	Class         string   `json:"class" validate:"required"`
	AvailableCars []string `json:"availableCars"`
	Restrictions  string   `json:"restrictions,omitempty"`
	CustomBop     string   `json:"customBop,omitempty"`
}
