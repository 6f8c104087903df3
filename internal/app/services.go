package app

import (
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/ovall/dentavia_backend/config"
	"github.com/ovall/dentavia_backend/internal/service/appointment"
	"github.com/ovall/dentavia_backend/internal/service/availability"
	"github.com/ovall/dentavia_backend/internal/service/notify"
	"github.com/ovall/dentavia_backend/internal/store"
	"github.com/ovall/dentavia_backend/internal/store/gormstore"
	pasetotoken "github.com/ovall/dentavia_backend/pkg/paseto"
)

// ServiceModule provides all application service dependencies.
var ServiceModule = fx.Module("services",
	fx.Provide(
		ProvideStores,
		ProvideNotifyGateway,
		ProvideAppointmentService,
		ProvideAvailabilityService,
		ProvidePasetoManager,
	),
)

// ProvideStores exposes the single gorm-backed store under each of its
// contract interfaces.
func ProvideStores(db *gorm.DB) (store.AppointmentStore, store.Directory, store.RecordStore) {
	st := gormstore.New(db)
	return st, st, st
}

func ProvideNotifyGateway(nc *nats.Conn) notify.Gateway {
	return notify.NewNATS(nc)
}

func ProvideAppointmentService(
	appts store.AppointmentStore,
	dir store.Directory,
	records store.RecordStore,
	gateway notify.Gateway,
) appointment.Service {
	return appointment.New(appts, dir, records, gateway)
}

func ProvideAvailabilityService(appts store.AppointmentStore, dir store.Directory) availability.Service {
	return availability.New(appts, dir)
}

func ProvidePasetoManager(cfg *config.Config) (*pasetotoken.Manager, error) {
	return pasetotoken.NewPasetoManager(cfg)
}
