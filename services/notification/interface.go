package notification

import (
	"context"

	"dentflow/models"
	"dentflow/utils"

	"go.uber.org/zap"
)

// Notifier delivers a notification to patients and providers.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// LogNotifier records notifications in the structured log. Delivery channels plug in
// behind Notifier.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n models.Notification) error {
	utils.GetLogger().Info("notification",
		zap.String("kind", n.Kind),
		zap.String("clinicID", n.ClinicID),
		zap.String("appointmentID", n.AppointmentID),
		zap.String("patientID", n.PatientID),
		zap.String("providerID", n.ProviderID),
		zap.String("title", n.Title),
		zap.String("body", n.Body))
	return nil
}
