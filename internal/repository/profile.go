package repository

import (
	"context"
	"fmt"

	"matrimony-backend/internal/models"
)

const profileColumns = `id, user_id,
	profile_created_for, name, about, gender, date_of_birth, martial_status, education,
	job_type, job_title, income, height, weight, complexion, mobile_number, current_address,
	native_place, mother_tongue,
	father_name, father_occupation, mother_name, mother_occupation, family_type,
	younger_brothers, younger_sisters, elder_brothers, elder_sisters,
	younger_brothers_married, younger_sisters_married, elder_brothers_married, elder_sisters_married,
	are_you_saved, are_you_baptized, are_you_anointed, church_name, denomination,
	pastor_name, pastor_mobile_number, church_address,
	ex_min_age, ex_max_age, ex_education, ex_job_type, ex_income, ex_complexion, ex_other_details,
	is_ready, payment_completed_at, created_at, updated_at`

// fields returns pointers to every scalar field in profileColumns order
func fields(p *models.Profile) []any {
	return []any{
		&p.ID, &p.UserID,
		&p.ProfileCreatedFor, &p.Name, &p.About, &p.Gender, &p.DateOfBirth, &p.MartialStatus, &p.Education,
		&p.JobType, &p.JobTitle, &p.Income, &p.Height, &p.Weight, &p.Complexion, &p.MobileNumber, &p.CurrentAddress,
		&p.NativePlace, &p.MotherTongue,
		&p.FatherName, &p.FatherOccupation, &p.MotherName, &p.MotherOccupation, &p.FamilyType,
		&p.YoungerBrothers, &p.YoungerSisters, &p.ElderBrothers, &p.ElderSisters,
		&p.YoungerBrothersMarried, &p.YoungerSistersMarried, &p.ElderBrothersMarried, &p.ElderSistersMarried,
		&p.AreYouSaved, &p.AreYouBaptized, &p.AreYouAnointed, &p.ChurchName, &p.Denomination,
		&p.PastorName, &p.PastorMobileNumber, &p.ChurchAddress,
		&p.ExMinAge, &p.ExMaxAge, &p.ExEducation, &p.ExJobType, &p.ExIncome, &p.ExComplexion, &p.ExOtherDetails,
		&p.IsReady, &p.PaymentCompletedAt, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (q *queries) getProfile(ctx context.Context, query, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := q.db.QueryRow(ctx, query, userID).Scan(fields(&p)...); err != nil {
		return nil, notFound(err, "profile")
	}
	photos, err := q.ListPhotos(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Photos = photos
	return &p, nil
}

// GetProfileByUserID retrieves a user's profile together with its photos
func (q *queries) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return q.getProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
}

// LockProfileByUserID retrieves a user's profile and locks the row until the transaction ends
func (q *queries) LockProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return q.getProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID)
}

// CreateProfile inserts an empty profile. It reports false when the user already has one.
func (q *queries) CreateProfile(ctx context.Context, p *models.Profile) (bool, error) {
	query := `
		INSERT INTO profiles (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	result, err := q.db.Exec(ctx, query, p.ID, p.UserID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create profile: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// UpdateProfile writes every scalar column of the profile
func (q *queries) UpdateProfile(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles SET
			profile_created_for = $2, name = $3, about = $4, gender = $5, date_of_birth = $6,
			martial_status = $7, education = $8, job_type = $9, job_title = $10, income = $11,
			height = $12, weight = $13, complexion = $14, mobile_number = $15, current_address = $16,
			native_place = $17, mother_tongue = $18,
			father_name = $19, father_occupation = $20, mother_name = $21, mother_occupation = $22,
			family_type = $23, younger_brothers = $24, younger_sisters = $25, elder_brothers = $26,
			elder_sisters = $27, younger_brothers_married = $28, younger_sisters_married = $29,
			elder_brothers_married = $30, elder_sisters_married = $31,
			are_you_saved = $32, are_you_baptized = $33, are_you_anointed = $34, church_name = $35,
			denomination = $36, pastor_name = $37, pastor_mobile_number = $38, church_address = $39,
			ex_min_age = $40, ex_max_age = $41, ex_education = $42, ex_job_type = $43, ex_income = $44,
			ex_complexion = $45, ex_other_details = $46,
			is_ready = $47, payment_completed_at = $48, updated_at = $49
		WHERE id = $1
	`
	result, err := q.db.Exec(ctx, query,
		p.ID,
		p.ProfileCreatedFor, p.Name, p.About, p.Gender, p.DateOfBirth,
		p.MartialStatus, p.Education, p.JobType, p.JobTitle, p.Income,
		p.Height, p.Weight, p.Complexion, p.MobileNumber, p.CurrentAddress,
		p.NativePlace, p.MotherTongue,
		p.FatherName, p.FatherOccupation, p.MotherName, p.MotherOccupation,
		p.FamilyType, p.YoungerBrothers, p.YoungerSisters, p.ElderBrothers,
		p.ElderSisters, p.YoungerBrothersMarried, p.YoungerSistersMarried,
		p.ElderBrothersMarried, p.ElderSistersMarried,
		p.AreYouSaved, p.AreYouBaptized, p.AreYouAnointed, p.ChurchName,
		p.Denomination, p.PastorName, p.PastorMobileNumber, p.ChurchAddress,
		p.ExMinAge, p.ExMaxAge, p.ExEducation, p.ExJobType, p.ExIncome,
		p.ExComplexion, p.ExOtherDetails,
		p.IsReady, p.PaymentCompletedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %w", ErrNotFound)
	}
	return nil
}
