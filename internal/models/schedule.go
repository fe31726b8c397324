package models

import "time"

type SchedulePeriod string

const (
	PeriodMorning   SchedulePeriod = "MANHA"
	PeriodAfternoon SchedulePeriod = "TARDE"
	PeriodEvening   SchedulePeriod = "NOITE"
)

type ScheduleStatus string

const (
	StatusPending    ScheduleStatus = "Aguardando"
	StatusInProgress ScheduleStatus = "Aula"
	StatusDone       ScheduleStatus = "Finalizado"
	StatusCancelled  ScheduleStatus = "Cancelado"
)

type Schedule struct {
	ID            int            `json:"id" mapstructure:"id"`
	Month         string         `json:"month" mapstructure:"month"`
	Date          string         `json:"date" mapstructure:"date"`
	TimeStart     string         `json:"timeStart" mapstructure:"timeStart"`
	TimeEnd       string         `json:"timeEnd" mapstructure:"timeEnd"`
	Period        SchedulePeriod `json:"period" mapstructure:"period"`
	ScheduleType  string         `json:"scheduleType" mapstructure:"scheduleType"`
	Room          string         `json:"room" mapstructure:"room"`
	Theme         string         `json:"tema" mapstructure:"tema"`
	Status        ScheduleStatus `json:"status" mapstructure:"status"`
	Info          string         `json:"info,omitempty" mapstructure:"info"`
	CreatedBy     int            `json:"createdBy" mapstructure:"createdBy"`
	TeacherOne    *int           `json:"teacherOne,omitempty" mapstructure:"teacherOne"`
	TeacherTwo    *int           `json:"teacherTwo,omitempty" mapstructure:"teacherTwo"`
	Document      string         `json:"document,omitempty" mapstructure:"document"`
	DocumentURL   string         `json:"documentUrl,omitempty" mapstructure:"documentUrl"`
	BgColor       string         `json:"bgColor" mapstructure:"bgColor"`
	CreatedAt     time.Time      `json:"createdAt" mapstructure:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt,omitempty" mapstructure:"updatedAt"`
	CreatedByUser UserSummary    `json:"createdByUser" mapstructure:"createdByUser"`
	TeacherOneUser UserSummary   `json:"teacherOneUser" mapstructure:"teacherOneUser"`
	TeacherTwoUser UserSummary   `json:"teacherTwoUser" mapstructure:"teacherTwoUser"`
}

// StartsAt combines the calendar date and start time. The zero time is
// returned when either field is malformed.
func (s *Schedule) StartsAt() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.TimeStart, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

type CreateScheduleData struct {
	Title      string `json:"title" validate:"required,min=3"`
	Description string `json:"description,omitempty"`
	Date       string `json:"date" validate:"required"`
	Time       string `json:"time" validate:"required"`
	Period     string `json:"period,omitempty" validate:"omitempty,oneof=MANHA TARDE NOITE"`
	RoomID     int    `json:"roomId" validate:"required,gt=0"`
	UserID     int    `json:"userId" validate:"required,gt=0"`
	TeacherOne *int   `json:"teacherOne,omitempty"`
	TeacherTwo *int   `json:"teacherTwo,omitempty"`
	BgColor    string `json:"bgColor,omitempty"`
}

type UpdateScheduleData struct {
	Title       string `json:"title,omitempty" validate:"omitempty,min=3"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	RoomID      int    `json:"roomId,omitempty" validate:"omitempty,gt=0"`
	TeacherOne  *int   `json:"teacherOne,omitempty"`
	TeacherTwo  *int   `json:"teacherTwo,omitempty"`
	BgColor     string `json:"bgColor,omitempty"`
}

type ScheduleFilters struct {
	Date   string
	Month  string
	Year   string
	UserID int
	RoomID int
	Status string
}

type ScheduleStats struct {
	Total     int `json:"total" mapstructure:"total"`
	Completed int `json:"completed" mapstructure:"completed"`
	Pending   int `json:"pending" mapstructure:"pending"`
	Cancelled int `json:"cancelled" mapstructure:"cancelled"`
}

type Availability struct {
	Available bool   `json:"available" mapstructure:"available"`
	Message   string `json:"message,omitempty" mapstructure:"message"`
}
