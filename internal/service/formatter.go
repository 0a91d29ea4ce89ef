package service

import (
	"fmt"
	"strings"

	"agrihire/internal/models"
)

// Formatters flatten a domain record into the text that gets embedded.
// They are pure and deterministic: the same record always yields the same
// content, since every sync run re-embeds whatever it selects. Empty
// fields are omitted rather than rendered as blank placeholders.

func FormatEquipment(eq *models.Equipment) string {
	availability := "currently unavailable"
	if eq.Available {
		availability = "available for hire"
	}

	return joinParts(". ",
		eq.Name,
		nonEmpty("Category: %s", string(eq.Category)),
		nonEmpty("Location: %s", eq.Location),
		rateLine("Daily rate: $%.2f per day", eq.DailyRate),
		availability,
		eq.Description,
	)
}

func FormatUser(user *models.User) string {
	return joinParts(". ",
		user.Name,
		nonEmpty("Role: %s", user.Role),
		nonEmpty("Region: %s", user.Region),
		user.Bio,
	)
}

func FormatLabour(lp *models.LabourProfile) string {
	var experience string
	if lp.ExperienceYears > 0 {
		experience = fmt.Sprintf("%d years of experience", lp.ExperienceYears)
	}

	return joinParts(". ",
		lp.Headline,
		nonEmpty("Skills: %s", strings.Join(lp.Skills, ", ")),
		experience,
		nonEmpty("Availability: %s", lp.Availability),
		nonEmpty("Region: %s", lp.Region),
		rateLine("Hourly rate: $%.2f per hour", lp.HourlyRate),
	)
}

// FormatReview takes the joined equipment and reviewer names pre-resolved
// by the caller; either may be blank, in which case it is omitted.
func FormatReview(rev *models.Review, equipmentName, reviewerName string) string {
	header := "Review"
	if equipmentName != "" {
		header += " of " + equipmentName
	}
	if reviewerName != "" {
		header += " by " + reviewerName
	}

	return joinParts(". ",
		header,
		fmt.Sprintf("Rating: %d out of 5", rev.Rating),
		rev.Comment,
	)
}

// joinParts joins the non-empty parts with sep.
func joinParts(sep string, parts ...string) string {
	filtered := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, strings.TrimSpace(p))
		}
	}
	return strings.Join(filtered, sep)
}

func nonEmpty(format, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return fmt.Sprintf(format, value)
}

func rateLine(format string, value float64) string {
	if value <= 0 {
		return ""
	}
	return fmt.Sprintf(format, value)
}
