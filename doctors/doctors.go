package doctors

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"carebook/db"
	"carebook/utils"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

var doctorPicDir = filepath.Join("static", "doctorpic")

type Doctor struct {
	ID        string  `json:"id" bson:"id"`
	Name      string  `json:"name" bson:"name"`
	Email     string  `json:"email" bson:"email"`
	Specialty string  `json:"specialty,omitempty" bson:"specialty,omitempty"`
	Fee       float64 `json:"fee,omitempty" bson:"fee,omitempty"`
	Photo     string  `json:"photo,omitempty" bson:"photo,omitempty"`
	Thumb     string  `json:"thumb,omitempty" bson:"thumb,omitempty"`
	CreatedAt int64   `json:"createdAt" bson:"createdAt"`
}

func GetDoctors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.DoctorsCollection.Find(ctx, bson.M{})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	doctors := []Doctor{}
	if err := cur.All(ctx, &doctors); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, doctors)
}

// CreateDoctor takes a multipart form so the photo can ride along with the
// fields. The photo is optional.
func CreateDoctor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	doc := Doctor{
		ID:        "d" + utils.GenerateRandomDigitString(12),
		Name:      strings.TrimSpace(r.FormValue("name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Specialty: strings.TrimSpace(r.FormValue("specialty")),
		CreatedAt: time.Now().Unix(),
	}
	if fee := r.FormValue("fee"); fee != "" {
		doc.Fee, _ = strconv.ParseFloat(fee, 64)
	}
	if doc.Name == "" || doc.Email == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}

	if file, header, err := r.FormFile("photo"); err == nil {
		defer file.Close()
		photo, thumb, err := savePhotoWithThumb(file, header)
		if err != nil {
			http.Error(w, "Unable to save photo", http.StatusInternalServerError)
			return
		}
		doc.Photo = photo
		doc.Thumb = thumb
	}

	if _, err := db.DoctorsCollection.InsertOne(r.Context(), doc); err != nil {
		http.Error(w, "db insert failed", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"doctor": doc})
}

func DeleteDoctor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := db.DoctorsCollection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "doctor not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// savePhotoWithThumb stores the original upload and a 200px-wide thumbnail,
// returning the public paths for both.
func savePhotoWithThumb(file multipart.File, header *multipart.FileHeader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", "", fmt.Errorf("unsupported file type %q", ext)
	}

	buf, err := io.ReadAll(file)
	if err != nil {
		return "", "", err
	}
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image %q: %w", header.Filename, err)
	}

	if err := os.MkdirAll(doctorPicDir, 0o755); err != nil {
		return "", "", err
	}

	id := utils.GetUUID()
	origName := id + ext
	if err := os.WriteFile(filepath.Join(doctorPicDir, origName), buf, 0o644); err != nil {
		return "", "", err
	}

	thumbName := id + "_thumb.jpg"
	thumb := imaging.Resize(img, 200, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(doctorPicDir, thumbName)); err != nil {
		return "", "", err
	}

	return "/static/doctorpic/" + origName, "/static/doctorpic/" + thumbName, nil
}
