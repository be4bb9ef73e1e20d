package model

import "time"

// BlogPost is an article published on the hotel website.  Slug is derived
// from the title and is unique.
type BlogPost struct {
    ID           uint64    `json:"id"`
    Title        string    `json:"title"`
    Slug         string    `json:"slug"`
    Content      string    `json:"content"`
    Author       string    `json:"author"`
    Published    bool      `json:"published"`
    DateCreation time.Time `json:"date_creation"`
}

// FAQ is a question/answer pair.  Position orders the public list.
type FAQ struct {
    ID           uint64    `json:"id"`
    Question     string    `json:"question"`
    Answer       string    `json:"answer"`
    Position     int       `json:"position"`
    DateCreation time.Time `json:"date_creation"`
}

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
    ID           uint64    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    Subject      string    `json:"subject"`
    Message      string    `json:"message"`
    Handled      bool      `json:"handled"`
    DateCreation time.Time `json:"date_creation"`
}
