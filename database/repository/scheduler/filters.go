package schedulerRepo

import (
	"time"

	"dentflow/models"

	"go.mongodb.org/mongo-driver/bson"
)

// nonBlockingStatuses never occupy the provider's calendar.
var nonBlockingStatuses = bson.A{models.StatusCancelled, models.StatusNoShow}

func byID(clinicID, id string) bson.M {
	return bson.M{"clinicId": clinicID, "id": id}
}

func blockingFilter(clinicID, providerID string, from, to time.Time) bson.M {
	return bson.M{
		"clinicId":       clinicID,
		"providerId":     providerID,
		"status":         bson.M{"$nin": nonBlockingStatuses},
		"scheduledStart": bson.M{"$lt": to},
		"scheduledEnd":   bson.M{"$gt": from},
	}
}

func listFilter(f models.AppointmentFilter) bson.M {
	filter := bson.M{"clinicId": f.ClinicID}
	if f.ProviderID != "" {
		filter["providerId"] = f.ProviderID
	}
	if f.PatientID != "" {
		filter["patientId"] = f.PatientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.From != nil || f.To != nil {
		rng := bson.M{}
		if f.From != nil {
			rng["$gte"] = *f.From
		}
		if f.To != nil {
			rng["$lt"] = *f.To
		}
		filter["scheduledStart"] = rng
	}
	return filter
}

func statusUpdate(a *models.Appointment) bson.M {
	set := bson.M{
		"status":    a.Status,
		"updatedAt": a.UpdatedAt,
	}
	unset := bson.M{}
	optionalTime := map[string]*time.Time{
		"actualStart": a.ActualStart,
		"actualEnd":   a.ActualEnd,
		"checkedInAt": a.CheckedInAt,
		"completedAt": a.CompletedAt,
	}
	for field, v := range optionalTime {
		if v != nil {
			set[field] = *v
		}
	}
	optionalInt := map[string]*int{
		"durationMinutes": a.DurationMinutes,
		"waitTimeMinutes": a.WaitTimeMinutes,
	}
	for field, v := range optionalInt {
		if v != nil {
			set[field] = *v
		} else {
			unset[field] = ""
		}
	}
	if a.CancellationReason != "" {
		set["cancellationReason"] = a.CancellationReason
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func rescheduleUpdate(a *models.Appointment, entry models.RescheduleEntry) bson.M {
	return bson.M{
		"$set": bson.M{
			"scheduledStart":      a.ScheduledStart,
			"scheduledEnd":        a.ScheduledEnd,
			"bufferBeforeMinutes": a.BufferBeforeMinutes,
			"bufferAfterMinutes":  a.BufferAfterMinutes,
			"status":              a.Status,
			"updatedAt":           a.UpdatedAt,
		},
		"$push": bson.M{"rescheduleHistory": entry},
	}
}

func providerDayFilter(clinicID, providerID, day string) bson.M {
	return bson.M{"clinicId": clinicID, "providerId": providerID, "day": day}
}
