package postgres

import (
	"github.com/jwalitptl/booking-api/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

type adminRepository struct {
	BaseRepository
}

type sessionRepository struct {
	BaseRepository
}

type contactRepository struct {
	BaseRepository
}

type serviceRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func NewAdminRepository(base BaseRepository) repository.AdminRepository {
	return &adminRepository{base}
}

func NewSessionRepository(base BaseRepository) repository.SessionRepository {
	return &sessionRepository{base}
}

func NewContactRepository(base BaseRepository) repository.ContactRepository {
	return &contactRepository{base}
}

func NewServiceRepository(base BaseRepository) repository.ServiceRepository {
	return &serviceRepository{base}
}
