package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tushare/internal/models"
	"tushare/internal/repositories/interfaces"
	"tushare/internal/utils"
	"tushare/pkg/logger"
	"tushare/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageService interface {
	SendMessage(ctx context.Context, senderID primitive.ObjectID, req *SendMessageRequest) (*models.Message, error)
	GetRideChat(ctx context.Context, rideID, userID primitive.ObjectID) (*models.GroupChat, error)
	MarkRead(ctx context.Context, messageID, userID primitive.ObjectID) error
}

type SendMessageRequest struct {
	RideID     string `json:"ride_id" validate:"required"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content" validate:"required,max=1000"`
}

type messageService struct {
	messageRepo interfaces.MessageRepository
	userRepo    interfaces.UserRepository
	rideRepo    interfaces.RideRepository
	bookingRepo interfaces.BookingRepository
	rides       RideService
	ws          *websocket.Handler
	logger      *logger.Logger
}

func NewMessageService(
	messageRepo interfaces.MessageRepository,
	userRepo interfaces.UserRepository,
	rideRepo interfaces.RideRepository,
	bookingRepo interfaces.BookingRepository,
	rides RideService,
	ws *websocket.Handler,
	log *logger.Logger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		rideRepo:    rideRepo,
		bookingRepo: bookingRepo,
		rides:       rides,
		ws:          ws,
		logger:      log,
	}
}

// SendMessage persists a chat message and fans it out to connected ride
// members. An empty receiver means a group broadcast to the whole ride.
func (s *messageService) SendMessage(ctx context.Context, senderID primitive.ObjectID, req *SendMessageRequest) (*models.Message, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("message validation failed: %w", err)
	}

	rideID, err := primitive.ObjectIDFromHex(req.RideID)
	if err != nil {
		return nil, ErrRideNotFound
	}

	allowed, err := s.rides.CanAccessRide(ctx, senderID, rideID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotRideMember
	}

	message := &models.Message{
		SenderID:  senderID,
		RideID:    rideID,
		Content:   req.Content,
		Timestamp: time.Now(),
	}

	if req.ReceiverID != "" {
		receiverID, err := primitive.ObjectIDFromHex(req.ReceiverID)
		if err != nil {
			return nil, ErrUserNotFound
		}

		allowed, err := s.rides.CanAccessRide(ctx, receiverID, rideID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrNotRideMember
		}

		message.ReceiverID = &receiverID
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	s.publish(ctx, message)

	return message, nil
}

func (s *messageService) GetRideChat(ctx context.Context, rideID, userID primitive.ObjectID) (*models.GroupChat, error) {
	allowed, err := s.rides.CanAccessRide(ctx, userID, rideID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotRideMember
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, fmt.Errorf("failed to get ride: %w", err)
	}

	chat := &models.GroupChat{RideID: rideID}

	driver, err := s.userRepo.GetByID(ctx, ride.DriverID)
	if err == nil {
		chat.DriverName = driver.FullName()
		chat.DriverProfileImage = driver.ProfileImage
	} else if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	bookings, err := s.bookingRepo.ListActiveByRide(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ride bookings: %w", err)
	}

	members := make([]*models.PublicProfile, 0, len(bookings))
	for _, booking := range bookings {
		member, err := s.userRepo.GetByID(ctx, booking.PassengerID)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get member: %w", err)
		}
		members = append(members, member.Public())
	}
	chat.Members = members

	messages, err := s.messageRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	details := make([]*models.MessageDetail, 0, len(messages))
	for _, message := range messages {
		detail := &models.MessageDetail{Message: *message}
		if sender, err := s.userRepo.GetByID(ctx, message.SenderID); err == nil {
			detail.Sender = sender.Public()
		}
		details = append(details, detail)
	}
	chat.Messages = details

	return chat, nil
}

func (s *messageService) MarkRead(ctx context.Context, messageID, userID primitive.ObjectID) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to get message: %w", err)
	}

	allowed, err := s.rides.CanAccessRide(ctx, userID, message.RideID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotRideMember
	}

	if message.IsRead {
		return nil
	}

	if err := s.messageRepo.MarkRead(ctx, messageID); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}

	return nil
}

func (s *messageService) publish(ctx context.Context, message *models.Message) {
	if s.ws == nil {
		return
	}

	data := map[string]interface{}{
		"message_id": message.ID.Hex(),
		"ride_id":    message.RideID.Hex(),
		"content":    message.Content,
		"timestamp":  message.Timestamp.Unix(),
	}
	if message.ReceiverID != nil {
		data["receiver_id"] = message.ReceiverID.Hex()
	}

	s.ws.SendRideMessage(message.RideID, message.SenderID, data)

	// Direct messages also land in the receiver's personal room, so they
	// arrive even when the receiver has not joined the ride room yet.
	if message.ReceiverID != nil {
		s.ws.SendUserNotification(*message.ReceiverID, "direct_message", data)
	}
}
