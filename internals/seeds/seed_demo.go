// file: internals/seeds/seed_demo.go
package seeds

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	classModel "sekolahku_backend/internals/features/school/classes/model"
	enrollmentModel "sekolahku_backend/internals/features/school/enrollments/model"
	schoolModel "sekolahku_backend/internals/features/school/schools/model"
	tenantModel "sekolahku_backend/internals/features/school/tenants/model"
	userModel "sekolahku_backend/internals/features/users/user/model"
)

type userSeed struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type classSeed struct {
	Name         string   `json:"name"`
	TeacherEmail string   `json:"teacher_email"`
	Students     []string `json:"students"` // emails
}

type demoSeed struct {
	TenantName string      `json:"tenant_name"`
	Timezone   string      `json:"timezone"`
	SchoolName string      `json:"school_name"`
	Users      []userSeed  `json:"users"`
	Classes    []classSeed `json:"classes"`
}

// SeedDemoFromJSON loads one tenant with its school, users, classes and
// enrollments from a JSON file. Existing emails are skipped, so it is safe
// to run more than once.
func SeedDemoFromJSON(db *gorm.DB, filePath string) {
	log.Println("📥 Reading seed file:", filePath)

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatalf("❌ Cannot read seed file: %v", err)
	}
	var seed demoSeed
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatalf("❌ Cannot decode seed file: %v", err)
	}

	tenant := tenantModel.TenantModel{
		TenantName:     seed.TenantName,
		TenantTimezone: seed.Timezone,
		TenantIsActive: true,
	}
	if err := db.Where("tenants_name = ?", seed.TenantName).
		FirstOrCreate(&tenant).Error; err != nil {
		log.Fatalf("❌ Tenant seed failed: %v", err)
	}

	school := schoolModel.SchoolModel{
		SchoolTenantID: tenant.TenantID,
		SchoolName:     seed.SchoolName,
		SchoolIsActive: true,
	}
	if err := db.Where("schools_tenant_id = ? AND schools_name = ?", tenant.TenantID, seed.SchoolName).
		FirstOrCreate(&school).Error; err != nil {
		log.Fatalf("❌ School seed failed: %v", err)
	}

	byEmail := make(map[string]userModel.UserModel, len(seed.Users))
	for _, u := range seed.Users {
		var existing userModel.UserModel
		if err := db.Where("users_email = ?", u.Email).First(&existing).Error; err == nil {
			log.Printf("ℹ️ User '%s' already exists, skipped.", u.Email)
			byEmail[u.Email] = existing
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("❌ Hash failed for '%s': %v", u.Email, err)
			continue
		}
		tid := tenant.TenantID
		nu := userModel.UserModel{
			UserTenantID: &tid,
			UserName:     u.Name,
			UserEmail:    u.Email,
			UserPassword: string(hashed),
			UserRole:     u.Role,
			UserIsActive: true,
		}
		if err := db.Create(&nu).Error; err != nil {
			log.Printf("❌ User insert failed for '%s': %v", u.Email, err)
			continue
		}
		log.Printf("✅ User '%s' (%s) created.", u.Email, u.Role)
		byEmail[u.Email] = nu
	}

	for _, cl := range seed.Classes {
		var teacherID *uuid.UUID
		if t, ok := byEmail[cl.TeacherEmail]; ok {
			id := t.UserID
			teacherID = &id
		}

		class := classModel.ClassModel{
			ClassSchoolID:  school.SchoolID,
			ClassTeacherID: teacherID,
			ClassName:      cl.Name,
			ClassIsActive:  true,
		}
		if err := db.Where("classes_school_id = ? AND classes_name = ?", school.SchoolID, cl.Name).
			FirstOrCreate(&class).Error; err != nil {
			log.Printf("❌ Class seed failed for '%s': %v", cl.Name, err)
			continue
		}

		for _, email := range cl.Students {
			st, ok := byEmail[email]
			if !ok {
				log.Printf("⚠️ Student '%s' not found for class '%s', skipped.", email, cl.Name)
				continue
			}
			enr := enrollmentModel.EnrollmentModel{
				EnrollmentClassID:   class.ClassID,
				EnrollmentStudentID: st.UserID,
				EnrollmentIsActive:  true,
				EnrollmentSince:     time.Now(),
			}
			if err := db.Where("enrollments_class_id = ? AND enrollments_student_id = ?",
				class.ClassID, st.UserID).
				FirstOrCreate(&enr).Error; err != nil {
				log.Printf("❌ Enrollment seed failed for '%s': %v", email, err)
			}
		}
		log.Printf("✅ Class '%s' seeded with %d students.", cl.Name, len(cl.Students))
	}
}
